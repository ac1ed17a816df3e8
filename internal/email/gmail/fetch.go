package gmail

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/vijay-prabhu/mailprune/internal/email"
)

// metadataHeaders are the only headers requested when describing a thread
var metadataHeaders = []string{"Subject", "Date"}

// convertThread converts a Gmail thread fetched with format=metadata
func convertThread(t *gmail.Thread) email.ConversationRef {
	ref := email.ConversationRef{
		ID:           t.Id,
		Snippet:      t.Snippet,
		MessageCount: len(t.Messages),
	}

	for i, msg := range t.Messages {
		if msg == nil {
			continue
		}

		date := messageDate(msg)
		if date.After(ref.LastActivity) {
			ref.LastActivity = date
		}

		// Thread subject is the subject of the first message
		if i == 0 && msg.Payload != nil {
			ref.Subject = headerValue(msg.Payload.Headers, "subject")
		}
		if ref.Snippet == "" {
			ref.Snippet = msg.Snippet
		}
	}

	return ref
}

// messageDate prefers Gmail's internal timestamp and falls back to the Date header
func messageDate(msg *gmail.Message) time.Time {
	if msg.InternalDate > 0 {
		return time.UnixMilli(msg.InternalDate)
	}
	if msg.Payload != nil {
		if t, err := parseDate(headerValue(msg.Payload.Headers, "date")); err == nil {
			return t
		}
	}
	return time.Time{}
}

// headerValue returns the first header with the given name (case-insensitive)
func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// parseDate attempts to parse various date formats
func parseDate(s string) (time.Time, error) {
	formats := []string{
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2 Jan 2006 15:04:05 -0700",
		"Mon, 02 Jan 2006 15:04:05 -0700 (MST)",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// includesTrash reports whether the query explicitly targets trash, in which
// case the list call must not filter trash out
func includesTrash(query string) bool {
	for _, field := range strings.Fields(strings.ToLower(query)) {
		if field == "in:trash" || field == "label:trash" {
			return true
		}
	}
	return false
}
