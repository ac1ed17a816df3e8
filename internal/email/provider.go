package email

import (
	"context"
)

// Provider defines the interface for mail providers the sweeper can drive
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// Search returns up to limit conversations matching query, skipping the
	// first offset matches
	Search(ctx context.Context, query string, offset, limit int) (Page, error)

	// BulkTrash moves all given conversations to the recoverable trash
	BulkTrash(ctx context.Context, refs []ConversationRef) error

	// TrashAgain permanently deletes a conversation that is already in trash.
	// Providers where trashing twice is not destructive must map this to
	// their explicit delete primitive.
	TrashAgain(ctx context.Context, ref ConversationRef) error

	// Describe fills in the metadata of a conversation returned by Search
	Describe(ctx context.Context, ref ConversationRef) (ConversationRef, error)
}

// Authenticator is implemented by providers that need an interactive or
// credential-based login before use
type Authenticator interface {
	Authenticate(ctx context.Context) error
	IsAuthenticated() bool
	GetUserEmail(ctx context.Context) (string, error)
}
