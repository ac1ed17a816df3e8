package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vijay-prabhu/mailprune/internal/sweep"
)

// Phase colors
var (
	colorBatchDone = lipgloss.Color("2")
	colorRetrying  = lipgloss.Color("3")
	colorCounting  = lipgloss.Color("4")
	colorSampling  = lipgloss.Color("5")
	colorDefault   = lipgloss.Color("7")
)

// Spinner frames for animated progress
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Terminal provides terminal-aware output utilities
type Terminal struct {
	IsTerminal   bool
	UseColor     bool
	out          io.Writer
	spinnerIndex int
}

// NewTerminal creates a Terminal writing status lines to stderr, which
// leaves stdout to the final table or JSON
func NewTerminal() *Terminal {
	isTerminal := IsInteractive(os.Stderr)
	return &Terminal{
		IsTerminal: isTerminal,
		UseColor:   isTerminal,
		out:        os.Stderr,
	}
}

// IsInteractive reports whether f is attached to a terminal
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ClearLine clears the current line (terminal only)
func (t *Terminal) ClearLine() {
	if t.IsTerminal {
		fmt.Fprint(t.out, "\r\033[K")
	}
}

// Spinner returns the next spinner frame
func (t *Terminal) Spinner() string {
	if !t.IsTerminal {
		return ""
	}
	frame := spinnerFrames[t.spinnerIndex]
	t.spinnerIndex = (t.spinnerIndex + 1) % len(spinnerFrames)
	return frame
}

// Color renders text in the given color (terminal only)
func (t *Terminal) Color(color lipgloss.Color, text string) string {
	if !t.UseColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

// Confirm asks a yes/no question on the terminal
func Confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&ok),
		),
	).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return ok, nil
}

// FormatETA formats a duration as a human-readable ETA string
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

// PhaseColor returns the color for a run phase
func PhaseColor(phase sweep.ProgressPhase) lipgloss.Color {
	switch phase {
	case sweep.PhaseBatchDone:
		return colorBatchDone
	case sweep.PhaseRetrying:
		return colorRetrying
	case sweep.PhaseCounting:
		return colorCounting
	case sweep.PhaseSampling:
		return colorSampling
	default:
		return colorDefault
	}
}

// progressLine keeps a single status line updated in place
type progressLine struct {
	terminal *Terminal
	started  time.Time
	now      func() time.Time
}

func newProgressLine(t *Terminal) *progressLine {
	return &progressLine{terminal: t, now: time.Now}
}

func (pl *progressLine) update(p sweep.Progress) {
	if pl.started.IsZero() {
		pl.started = pl.now()
	}
	if p.StartedAt.IsZero() {
		p.StartedAt = pl.started
	}

	pl.terminal.ClearLine()
	msg := pl.terminal.Color(PhaseColor(p.Phase), progressMessage(p, pl.terminal.Spinner()))
	fmt.Fprint(pl.terminal.out, msg)
}

func (pl *progressLine) clear() {
	pl.terminal.ClearLine()
}

// progressMessage renders one progress snapshot
func progressMessage(p sweep.Progress, spinner string) string {
	var eta string
	if d := p.ETA(); d > 0 {
		eta = fmt.Sprintf(" (ETA: %s)", FormatETA(d))
	}

	switch p.Phase {
	case sweep.PhaseBatchDone:
		if p.Limit > 0 {
			return fmt.Sprintf("Batch %d: %d/%d conversations (%d%%)%s", p.Batch, p.Current, p.Limit, p.Percentage(), eta)
		}
		return fmt.Sprintf("Batch %d: %d conversations", p.Batch, p.Current)
	case sweep.PhaseRetrying:
		return fmt.Sprintf("Batch %d failed, retrying in %s", p.Batch+1, p.Delay)
	case sweep.PhaseCounting:
		return fmt.Sprintf("%s Counting: %d so far", spinner, p.Current)
	case sweep.PhaseSampling:
		return fmt.Sprintf("%s Sampled %d conversations", spinner, p.Current)
	default:
		return fmt.Sprintf("%s Working...", spinner)
	}
}
