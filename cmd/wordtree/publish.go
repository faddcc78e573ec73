package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/kafka"
)

func newPublishCmd(a *app) *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   "publish <file>...",
		Short: "Publish text files to the Kafka ingest topic",
		Long: `Sends each file as one text document to the ingest topic, in argument
order. A running "wordtree serve" with kafka.enabled indexes them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.Kafka.Brokers) == 0 {
				return fmt.Errorf("no kafka brokers configured")
			}
			if topic == "" {
				topic = a.cfg.Kafka.Topics.TextIngest
			}
			events, err := textEvents(args)
			if err != nil {
				return err
			}

			producer := kafka.NewProducer(a.cfg.Kafka, topic)
			defer producer.Close()
			if err := producer.Publish(cmd.Context(), events...); err != nil {
				return err
			}
			slog.Info("published documents", "topic", topic, "count", len(events))
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "topic to publish to (default kafka.topics.textIngest)")
	return cmd
}

// textEvents gives every document of one call the same key so they land on
// one partition and are indexed in order.
func textEvents(paths []string) ([]kafka.Event, error) {
	batch := uuid.NewString()
	events := make([]kafka.Event, 0, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		id := fmt.Sprintf("%s/%d-%s", batch, i, filepath.Base(path))
		events = append(events, kafka.Event{
			Key:   batch,
			Value: consumer.TextEvent{DocumentID: id, Text: string(data)},
		})
	}
	return events, nil
}
