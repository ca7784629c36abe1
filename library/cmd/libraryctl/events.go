package main

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Opnex/Ai-Developer-Library/library/config"
	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
	"github.com/Opnex/Ai-Developer-Library/pkg/kafka"
	"github.com/Opnex/Ai-Developer-Library/pkg/logger"
)

func eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Tail the lending-events topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.NewConfig()
			if !cfg.Kafka.Enabled() {
				return fmt.Errorf("KAFKA_ADDRS is not set")
			}
			log := logger.NewLogger(cfg.Log, "libraryctl")

			group, err := kafka.NewConsumerGroup(cfg.Kafka, kafka.LendingConsumerGroup)
			if err != nil {
				return err
			}
			defer group.Close()

			consumer := newEventPrinter(log)
			go kafka.Consume(cmd.Context(), group, consumer, kafka.LendingTopic, log)

			<-consumer.ready
			log.Info("consuming", zap.String("topic", kafka.LendingTopic))
			<-cmd.Context().Done()
			return nil
		},
	}
}

// eventPrinter prints each lending event as it is claimed. Malformed
// messages are logged and skipped, never redelivered.
type eventPrinter struct {
	log   *zap.Logger
	ready chan struct{}
}

func newEventPrinter(log *zap.Logger) *eventPrinter {
	return &eventPrinter{
		log:   log.Named("consumer"),
		ready: make(chan struct{}),
	}
}

func (p *eventPrinter) Setup(sarama.ConsumerGroupSession) error {
	close(p.ready)
	return nil
}

func (p *eventPrinter) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (p *eventPrinter) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				p.log.Warn("message channel was closed")
				return nil
			}
			var event model.LendingEvent
			if err := json.Unmarshal(message.Value, &event); err != nil {
				p.log.Error("unmarshal event", zap.Error(err))
				session.MarkMessage(message, "")
				continue
			}
			fmt.Printf("%s %-6s book=%d %q user=%s\n",
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.EventType, event.BookID, event.BookTitle, event.Username)
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}
