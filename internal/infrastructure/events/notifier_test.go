package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ahorro-api/internal/infrastructure/events"
	"github.com/jhoicas/Ahorro-api/pkg/logger"
)

type keyedPayload struct{ id string }

func (p keyedPayload) AggregateID() string { return p.id }

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, events.Message) error {
	p.calls++
	return errors.New("broker caído")
}

type blockingPublisher struct{}

func (blockingPublisher) Publish(ctx context.Context, _ events.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestNotifier_PublishesWithKey(t *testing.T) {
	rec := events.NewRecorder()
	n := events.NewNotifier(rec, logger.Nop(), time.Second)

	n.Notify(context.Background(), "card.repaid", keyedPayload{id: "card-1"})
	n.Wait()

	got := rec.Events()
	require.Len(t, got, 1)
	assert.Equal(t, "card.repaid", got[0].Event)
	assert.Equal(t, "card-1", got[0].Key)
	assert.False(t, got[0].OccurredAt.IsZero())
}

func TestNotifier_FailureIsSwallowed(t *testing.T) {
	pub := &failingPublisher{}
	n := events.NewNotifier(pub, logger.Nop(), time.Second)

	assert.NotPanics(t, func() {
		n.Notify(context.Background(), "stock.input", nil)
		n.Wait()
	})
	assert.Equal(t, 1, pub.calls)
}

// Un contexto cancelado del llamador no debe cortar la publicación; el timeout propio sí.
func TestNotifier_DoesNotBlockCaller(t *testing.T) {
	n := events.NewNotifier(blockingPublisher{}, logger.Nop(), 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	n.Notify(ctx, "transfer.created", nil)
	assert.Less(t, time.Since(start), 20*time.Millisecond, "Notify retorna de inmediato")

	n.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
