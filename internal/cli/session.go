package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vijay-prabhu/mailprune/internal/config"
	"github.com/vijay-prabhu/mailprune/internal/email/gmail"
	"github.com/vijay-prabhu/mailprune/internal/logging"
	"github.com/vijay-prabhu/mailprune/internal/sweep"
)

// runFlags holds the per-command overrides of the [run] config section
type runFlags struct {
	batchSize     int
	delay         time.Duration
	safetyLimit   int
	maxRetries    int
	years         int
	days          int
	keepStarred   bool
	keepImportant bool
	query         string
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	flags := cmd.Flags()
	flags.IntVar(&f.batchSize, "batch-size", 0, "conversations per page (default from config)")
	flags.DurationVar(&f.delay, "delay", 0, "pause after a full page, also the backoff base (e.g. 3s)")
	flags.IntVar(&f.safetyLimit, "limit", 0, "stop after this many conversations (0 = unbounded)")
	flags.IntVar(&f.maxRetries, "max-retries", 0, "consecutive failures tolerated before aborting")
	flags.IntVar(&f.years, "years", 0, "only conversations older than this many years")
	flags.IntVar(&f.days, "days", 0, "only conversations older than this many days (added to --years)")
	flags.BoolVar(&f.keepStarred, "keep-starred", true, "skip starred conversations")
	flags.BoolVar(&f.keepImportant, "keep-important", false, "skip conversations marked important")
	flags.StringVar(&f.query, "query", "", "extra search operators appended to the query")
}

// apply copies the flags the user actually set onto the run section
func (f *runFlags) apply(cmd *cobra.Command, r *config.RunSection) {
	flags := cmd.Flags()
	if flags.Changed("batch-size") {
		r.BatchSize = f.batchSize
	}
	if flags.Changed("delay") {
		r.InterBatchDelay = config.Duration{Duration: f.delay}
	}
	if flags.Changed("limit") {
		r.SafetyLimit = f.safetyLimit
	}
	if flags.Changed("max-retries") {
		r.MaxRetries = f.maxRetries
	}
	// Setting either age flag replaces the configured age entirely
	if flags.Changed("years") || flags.Changed("days") {
		r.OlderThanYears = f.years
		r.OlderThanDays = f.days
	}
	if flags.Changed("keep-starred") {
		r.KeepStarred = f.keepStarred
	}
	if flags.Changed("keep-important") {
		r.KeepImportant = f.keepImportant
	}
	if flags.Changed("query") {
		r.ExtraQuery = f.query
	}
}

// session is everything one command needs to sweep a mailbox
type session struct {
	cfg      *config.Config
	runCfg   sweep.RunConfig
	runID    string
	log      *logging.Logger
	provider *gmail.Provider
	terminal *Terminal
	progress *progressLine
}

// newSession loads config and applies flag overrides. It does not contact
// Gmail; call start to authenticate and get a runner.
func newSession(cmd *cobra.Command, action sweep.Action, flags *runFlags, deleteScope bool) (*session, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	flags.apply(cmd, &cfg.Run)
	if err := cfg.Run.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run settings: %w", err)
	}

	if cmd.Flags().Changed("quiet") {
		cfg.Log.Quiet = quiet
	}

	runCfg := cfg.Run.RunConfig(action, time.Now())
	if err := runCfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		runCfg: runCfg,
		runID:  uuid.New().String(),
		log:    logging.Default(cfg.Log.Quiet),
		provider: gmail.New(cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath, gmail.Options{
			Scopes:            gmail.ScopesFor(deleteScope),
			RequestsPerSecond: cfg.Gmail.RequestsPerSecond,
			Burst:             cfg.Gmail.Burst,
		}),
		terminal: NewTerminal(),
	}

	// Log lines already report each batch; the status line only fills in
	// when INFO output is silenced
	if cfg.Log.Quiet && s.terminal.IsTerminal {
		s.progress = newProgressLine(s.terminal)
	}

	return s, nil
}

// query is the search the run will issue
func (s *session) query() string {
	return sweep.BuildQuery(s.runCfg.Cutoff, s.runCfg.Action, s.runCfg.Filter)
}

// start authenticates with Gmail and returns a runner whose log lines carry
// the account
func (s *session) start(ctx context.Context) (*sweep.Runner, error) {
	s.log.Info("Authenticating with Gmail")
	if err := s.provider.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	account, _ := s.provider.GetUserEmail(ctx)
	s.log = s.log.With("account", account)
	s.log.Important("Authenticated")

	opts := sweep.Options{
		Logger: s.log,
		RunID:  s.runID,
	}
	if s.progress != nil {
		opts.Progress = s.progress.update
	}

	return sweep.New(s.provider, s.runCfg, opts)
}

// done clears any status line before final output is printed
func (s *session) done() {
	if s.progress != nil {
		s.progress.clear()
	}
}

// signalContext cancels on SIGINT or SIGTERM so a run stops between calls
// and still reports what it did
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
