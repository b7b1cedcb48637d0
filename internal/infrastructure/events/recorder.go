package events

import (
	"context"
	"sync"

	"github.com/jhoicas/Ahorro-api/internal/application/ports"
)

var _ ports.Notifier = (*Recorder)(nil)

// Recorder guarda los eventos en memoria de forma síncrona (tests y modo memory).
type Recorder struct {
	mu     sync.Mutex
	events []Message
}

// NewRecorder construye un Recorder vacío.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify registra el evento.
func (r *Recorder) Notify(_ context.Context, event string, payload any) {
	msg := Message{Event: event, Payload: payload}
	if k, ok := payload.(Keyed); ok {
		msg.Key = k.AggregateID()
	}
	r.mu.Lock()
	r.events = append(r.events, msg)
	r.mu.Unlock()
}

// Publish permite usar el Recorder como Publisher del Notifier asíncrono.
func (r *Recorder) Publish(ctx context.Context, msg Message) error {
	r.mu.Lock()
	r.events = append(r.events, msg)
	r.mu.Unlock()
	return nil
}

// Events devuelve una copia de los eventos registrados.
func (r *Recorder) Events() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.events))
	copy(out, r.events)
	return out
}

// Names devuelve los nombres de los eventos en orden de llegada.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Event)
	}
	return out
}
