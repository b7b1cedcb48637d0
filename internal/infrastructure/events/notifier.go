package events

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Ahorro-api/internal/application/ports"
	"github.com/jhoicas/Ahorro-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

var _ ports.Notifier = (*Notifier)(nil)

// DefaultTimeout límite por publicación.
const DefaultTimeout = 5 * time.Second

// Message es el sobre publicado en el sink.
type Message struct {
	Event      string    `json:"event"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Publisher entrega mensajes a un destino concreto (Kafka, log, memoria).
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Keyed lo implementan los payloads que conocen su agregado (clave de partición).
type Keyed interface {
	AggregateID() string
}

// Notifier publica en segundo plano: Notify nunca bloquea ni falla.
type Notifier struct {
	pub     Publisher
	log     *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotifier construye el notificador. timeout <= 0 usa DefaultTimeout.
func NewNotifier(pub Publisher, log *logger.Logger, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Notifier{pub: pub, log: log, timeout: timeout}
}

// Notify encola la publicación; el contexto del llamador solo aporta valores, no su cancelación.
func (n *Notifier) Notify(ctx context.Context, event string, payload any) {
	msg := Message{Event: event, OccurredAt: time.Now().UTC(), Payload: payload}
	if k, ok := payload.(Keyed); ok {
		msg.Key = k.AggregateID()
	}
	base := context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.log.Error().Interface("panic", r).Str("event", event).Msg("publicación de evento abortada")
			}
		}()
		pctx, cancel := context.WithTimeout(base, n.timeout)
		defer cancel()
		if err := n.pub.Publish(pctx, msg); err != nil {
			metrics.EventsPublishedTotal.WithLabelValues(event, "error").Inc()
			n.log.Warn().Err(err).Str("event", event).Str("key", msg.Key).Msg("no se pudo publicar el evento")
			return
		}
		metrics.EventsPublishedTotal.WithLabelValues(event, "ok").Inc()
	}()
}

// Wait espera las publicaciones en curso (apagado ordenado).
func (n *Notifier) Wait() {
	n.wg.Wait()
}
