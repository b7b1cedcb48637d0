package events

import (
	"context"

	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

// LogPublisher escribe los eventos en el log; se usa cuando no hay brokers configurados.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publicador de log.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish registra el evento a nivel debug.
func (p *LogPublisher) Publish(_ context.Context, msg Message) error {
	p.log.Debug().Str("event", msg.Event).Str("key", msg.Key).Time("occurred_at", msg.OccurredAt).Msg("evento")
	return nil
}
