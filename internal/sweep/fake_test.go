package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vijay-prabhu/mailprune/internal/email"
)

var errTransient = errors.New("rate limit exceeded")

// fakeProvider is an in-memory mailbox. Search matches every live thread;
// BulkTrash and TrashAgain remove threads unless sticky is set.
type fakeProvider struct {
	threads []email.ConversationRef
	removed map[string]bool
	sticky  bool

	// searchErr returns an error for the nth Search call (1-based), or nil
	searchErr func(n int) error
	trashErr  func(n int) error

	searches      []searchCall
	trashCalls    [][]string
	trashAgainIDs []string
	describeCalls int
}

type searchCall struct {
	query         string
	offset, limit int
}

func newFakeProvider(n int) *fakeProvider {
	base := time.Date(2019, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &fakeProvider{removed: map[string]bool{}}
	for i := 0; i < n; i++ {
		p.threads = append(p.threads, email.ConversationRef{
			ID:      fmt.Sprintf("t%04d", i),
			Snippet: fmt.Sprintf("snippet %d", i),
		})
		p.threads[i].LastActivity = base.Add(time.Duration(i) * time.Hour)
	}
	return p
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) live() []email.ConversationRef {
	var out []email.ConversationRef
	for _, t := range p.threads {
		if !p.removed[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func (p *fakeProvider) Search(ctx context.Context, query string, offset, limit int) (email.Page, error) {
	p.searches = append(p.searches, searchCall{query: query, offset: offset, limit: limit})
	if p.searchErr != nil {
		if err := p.searchErr(len(p.searches)); err != nil {
			return nil, err
		}
	}

	live := p.live()
	if offset >= len(live) {
		return email.Page{}, nil
	}
	end := min(offset+limit, len(live))

	page := make(email.Page, 0, end-offset)
	for _, t := range live[offset:end] {
		page = append(page, email.ConversationRef{ID: t.ID, Snippet: t.Snippet})
	}
	return page, nil
}

func (p *fakeProvider) BulkTrash(ctx context.Context, refs []email.ConversationRef) error {
	p.trashCalls = append(p.trashCalls, email.Page(refs).IDs())
	if p.trashErr != nil {
		if err := p.trashErr(len(p.trashCalls)); err != nil {
			return err
		}
	}
	if !p.sticky {
		for _, r := range refs {
			p.removed[r.ID] = true
		}
	}
	return nil
}

func (p *fakeProvider) TrashAgain(ctx context.Context, ref email.ConversationRef) error {
	p.trashAgainIDs = append(p.trashAgainIDs, ref.ID)
	if p.trashErr != nil {
		if err := p.trashErr(len(p.trashAgainIDs)); err != nil {
			return err
		}
	}
	if !p.sticky {
		p.removed[ref.ID] = true
	}
	return nil
}

func (p *fakeProvider) Describe(ctx context.Context, ref email.ConversationRef) (email.ConversationRef, error) {
	p.describeCalls++
	for _, t := range p.threads {
		if t.ID == ref.ID {
			t.Subject = "Subject " + t.ID
			t.MessageCount = 2
			return t, nil
		}
	}
	return ref, fmt.Errorf("thread %s not found", ref.ID)
}

// sleepRecorder records every requested delay without blocking
type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

// logRecorder captures log lines per level
type logRecorder struct {
	info, important, errors []string
}

func (l *logRecorder) Info(msg string, _ ...interface{})      { l.info = append(l.info, msg) }
func (l *logRecorder) Important(msg string, _ ...interface{}) { l.important = append(l.important, msg) }
func (l *logRecorder) Error(msg string, _ ...interface{})     { l.errors = append(l.errors, msg) }

func alwaysFail(int) error { return errTransient }

var testNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func testConfig(action Action, batchSize, safetyLimit, maxRetries int, delay time.Duration) RunConfig {
	return RunConfig{
		BatchSize:       batchSize,
		InterBatchDelay: delay,
		SafetyLimit:     safetyLimit,
		MaxRetries:      maxRetries,
		Cutoff:          Cutoff(testNow, 2, 0),
		Action:          action,
	}
}

func newTestRunner(p *fakeProvider, cfg RunConfig, sleeper *sleepRecorder, logs *logRecorder) *Runner {
	r, err := New(p, cfg, Options{
		Logger: logs,
		Sleep:  sleeper.sleep,
		Now:    func() time.Time { return testNow },
		RunID:  "test-run",
	})
	if err != nil {
		panic(err)
	}
	return r
}
