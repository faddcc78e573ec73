package consumer

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxDocumentIDLength = 255
	maxTextBytes        = 1 << 20
)

// ValidationError lists the rejected fields of a text event.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// Validate checks the envelope of a text event. Empty text is accepted
// here and skipped by the handler.
func (e TextEvent) Validate() error {
	errs := make(map[string]string)

	id := strings.TrimSpace(e.DocumentID)
	if id == "" {
		errs["documentId"] = "is required"
	} else if len(id) > maxDocumentIDLength {
		errs["documentId"] = fmt.Sprintf("must be at most %d bytes", maxDocumentIDLength)
	}
	if len(e.Text) > maxTextBytes {
		errs["text"] = fmt.Sprintf("must be at most %d bytes", maxTextBytes)
	} else if !utf8.ValidString(e.Text) {
		errs["text"] = "must be valid UTF-8"
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
