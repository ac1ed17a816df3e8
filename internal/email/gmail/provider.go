package gmail

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/vijay-prabhu/mailprune/internal/email"
)

// maxListPageSize is the largest page users.threads.list accepts
const maxListPageSize = 500

// Options tunes the Gmail provider
type Options struct {
	Scopes            []string // OAuth scopes to request (default TrashScopes)
	RequestsPerSecond float64  // API call throttle
	Burst             int      // Throttle burst size
}

var (
	_ email.Provider      = (*Provider)(nil)
	_ email.Authenticator = (*Provider)(nil)
)

// Provider implements the email.Provider interface for Gmail
type Provider struct {
	credPath  string
	tokenPath string
	scopes    []string
	limiter   *rate.Limiter
	service   *gmail.Service
	userEmail string
}

// New creates a new Gmail provider
func New(credPath, tokenPath string, opts Options) *Provider {
	scopes := opts.Scopes
	if len(scopes) == 0 {
		scopes = TrashScopes
	}

	limit := rate.Limit(opts.RequestsPerSecond)
	if opts.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &Provider{
		credPath:  credPath,
		tokenPath: tokenPathFor(tokenPath, scopes),
		scopes:    scopes,
		limiter:   rate.NewLimiter(limit, burst),
	}
}

// NewWithService wraps an existing Gmail service, skipping OAuth
func NewWithService(service *gmail.Service, opts Options) *Provider {
	p := New("", "", opts)
	p.service = service
	return p
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "gmail"
}

// IsAuthenticated checks if valid token exists
func (p *Provider) IsAuthenticated() bool {
	_, err := loadToken(p.tokenPath)
	return err == nil
}

// Authenticate performs OAuth authentication
func (p *Provider) Authenticate(ctx context.Context) error {
	config, err := loadCredentials(p.credPath, p.scopes)
	if err != nil {
		return err
	}

	client, err := getClient(ctx, config, p.tokenPath)
	if err != nil {
		return fmt.Errorf("failed to get OAuth client: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return fmt.Errorf("failed to create Gmail service: %w", err)
	}

	p.service = service

	profile, err := service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get user profile: %w", err)
	}

	p.userEmail = profile.EmailAddress
	return nil
}

// GetUserEmail returns the authenticated user's email address
func (p *Provider) GetUserEmail(ctx context.Context) (string, error) {
	if p.userEmail == "" {
		return "", fmt.Errorf("not authenticated")
	}
	return p.userEmail, nil
}

// Search lists threads matching query. Gmail paginates with page tokens,
// so offset is honored by walking pages and discarding the first matches.
func (p *Provider) Search(ctx context.Context, query string, offset, limit int) (email.Page, error) {
	if p.service == nil {
		return nil, fmt.Errorf("not authenticated - call Authenticate() first")
	}
	if limit <= 0 {
		return email.Page{}, nil
	}

	skip := offset
	page := make(email.Page, 0, limit)
	pageToken := ""

	for {
		want := skip + limit - len(page)
		req := p.service.Users.Threads.List("me").
			Q(query).
			IncludeSpamTrash(includesTrash(query)).
			MaxResults(int64(min(want, maxListPageSize)))

		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err := req.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list threads: %w", err)
		}

		for _, t := range resp.Threads {
			if skip > 0 {
				skip--
				continue
			}
			page = append(page, email.ConversationRef{ID: t.Id, Snippet: t.Snippet})
			if len(page) == limit {
				return page, nil
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return page, nil
		}
	}
}

// BulkTrash moves every given thread to trash. Gmail has no batch trash
// endpoint for threads, so this issues one throttled call per thread and
// stops at the first failure.
func (p *Provider) BulkTrash(ctx context.Context, refs []email.ConversationRef) error {
	if p.service == nil {
		return fmt.Errorf("not authenticated")
	}

	for _, ref := range refs {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
		if _, err := p.service.Users.Threads.Trash("me", ref.ID).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to trash thread %s: %w", ref.ID, err)
		}
	}
	return nil
}

// TrashAgain permanently deletes a thread that is already in trash.
// users.threads.trash on a trashed thread is a no-op, so this calls
// users.threads.delete, which needs the https://mail.google.com/ scope
// (DeleteScopes).
func (p *Provider) TrashAgain(ctx context.Context, ref email.ConversationRef) error {
	if p.service == nil {
		return fmt.Errorf("not authenticated")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := p.service.Users.Threads.Delete("me", ref.ID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete thread %s: %w", ref.ID, err)
	}
	return nil
}

// Describe loads subject, last activity and message count for a thread
func (p *Provider) Describe(ctx context.Context, ref email.ConversationRef) (email.ConversationRef, error) {
	if p.service == nil {
		return ref, fmt.Errorf("not authenticated")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return ref, err
	}
	t, err := p.service.Users.Threads.Get("me", ref.ID).
		Format("metadata").
		MetadataHeaders(metadataHeaders...).
		Context(ctx).
		Do()
	if err != nil {
		return ref, fmt.Errorf("failed to get thread %s: %w", ref.ID, err)
	}

	return convertThread(t), nil
}
