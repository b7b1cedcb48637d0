// Package observe agrupa traza, métrica y latencia de cada operación del libro mayor.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Ahorro-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Ahorro-api/pkg/tracing"
)

// Op es una operación en curso.
type Op struct {
	name  string
	start time.Time
	span  trace.Span
}

// Start abre el span de la operación. Uso:
//
//	ctx, op := observe.Start(ctx, "settlement.create")
//	defer func() { op.End(err) }()
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Op) {
	ctx, span := tracing.StartSpan(ctx, name, attrs...)
	return ctx, &Op{name: name, start: time.Now(), span: span}
}

// End cierra el span y registra el resultado en Prometheus.
func (o *Op) End(err error) {
	metrics.ObserveOperation(o.name, o.start, err)
	tracing.End(o.span, err)
}
