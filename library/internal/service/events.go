package service

import (
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Opnex/Ai-Developer-Library/library/internal/model"
	"github.com/Opnex/Ai-Developer-Library/pkg/kafka"
)

// Publisher is the optional lending event stream. A nil Publisher disables
// publishing, which is the single-process default.
type Publisher interface {
	Publish(topic string, v any) error
}

func NewEnqueuer(producer sarama.SyncProducer) Publisher {
	return &enqueuerImpl{
		producer: producer,
	}
}

type enqueuerImpl struct {
	producer sarama.SyncProducer
}

func (q *enqueuerImpl) Publish(topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.StringEncoder(data)}
	if _, _, err = q.producer.SendMessage(msg); err != nil {
		return err
	}
	return nil
}

// publish is fire-and-forget: an unavailable broker must not fail a
// lending operation that already committed.
func (s *Service) publish(event model.LendingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(kafka.LendingTopic, event); err != nil {
		s.log.Warn("publish lending event", zap.Error(err))
	}
}
