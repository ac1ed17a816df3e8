package email

import (
	"strings"
	"time"
)

// ConversationRef is a provider handle for one conversation (thread).
// The sweeper never mutates it; it only hands it back to the provider.
type ConversationRef struct {
	ID           string    `json:"id"`                      // Provider-specific thread ID
	LastActivity time.Time `json:"last_activity,omitempty"` // Date of the newest message
	Subject      string    `json:"subject,omitempty"`       // Subject of the first message
	MessageCount int       `json:"message_count,omitempty"` // Messages in the thread
	Snippet      string    `json:"snippet,omitempty"`       // Short preview text
}

// DisplaySubject returns the subject or a placeholder when it is empty
func (r ConversationRef) DisplaySubject() string {
	s := strings.TrimSpace(r.Subject)
	if s == "" {
		return "(no subject)"
	}
	return s
}

// Page is one search result page, in provider order
type Page []ConversationRef

// IDs returns the conversation IDs of the page
func (p Page) IDs() []string {
	ids := make([]string, len(p))
	for i, ref := range p {
		ids[i] = ref.ID
	}
	return ids
}

// Full reports whether the page filled the requested limit
func (p Page) Full(limit int) bool {
	return limit > 0 && len(p) == limit
}
