// Package consumer reads text documents from Kafka and feeds them to the
// indexer engine one at a time, so line numbers follow arrival order.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/resilience"
)

// TextEvent is the message published on the text ingest topic.
type TextEvent struct {
	DocumentID string `json:"documentId"`
	Text       string `json:"text"`
}

// Indexer is the part of the engine the consumer needs.
type Indexer interface {
	IndexText(text string) (indexer.BuildStats, error)
}

// HandleMessage returns a Kafka MessageHandler that indexes every text
// event into engine. Undecodable, invalid and empty documents are logged and
// committed. A tree that fails verification after insert is not retried,
// since the words already went in; other failures are returned for retry.
func HandleMessage(engine Indexer, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	count := func(status string) {
		if m != nil {
			m.IngestMessagesTotal.WithLabelValues(status).Inc()
		}
	}
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[TextEvent](value)
		if err != nil {
			logger.Error("failed to decode text event",
				"error", err,
				"key", string(key),
			)
			count("invalid")
			return nil
		}
		if err := event.Validate(); err != nil {
			logger.Error("rejecting text event",
				"error", err,
				"key", string(key),
			)
			count("invalid")
			return nil
		}

		stats, err := engine.IndexText(event.Text)
		if errors.Is(err, apperrors.ErrEmptyInput) {
			logger.Warn("skipping empty document", "doc_id", event.DocumentID)
			count("skipped")
			return nil
		}
		if err != nil {
			count("failed")
			err = fmt.Errorf("indexing document %s: %w", event.DocumentID, err)
			if errors.Is(err, apperrors.ErrInvariantViolation) {
				return resilience.Permanent(err)
			}
			return err
		}

		count("indexed")
		logger.Info("document indexed",
			"doc_id", event.DocumentID,
			"tokens", stats.Tokens,
			"first_line", stats.FirstLine,
			"lines", stats.Lines,
		)
		return nil
	}
}
