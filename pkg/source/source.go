package source

import (
	"context"
	"fmt"
	"time"

	"github.com/vango-dev/ssr/pkg/middleware"
	"github.com/vango-dev/ssr/pkg/store"
	"go.opentelemetry.io/otel/attribute"
)

type notFoundError struct{}

func (notFoundError) Error() string  { return "source: item not found" }
func (notFoundError) NotFound() bool { return true }

// ErrNotFound is matched (with errors.Is) by every missing-item error.
var ErrNotFound error = notFoundError{}

func notFound(id string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}

// Instrumented wraps a fetcher with metrics and tracing.
type Instrumented struct {
	Name    string
	Fetcher store.ItemFetcher
	Metrics *middleware.Metrics
}

// Instrument wraps f. A nil m records no metrics.
func Instrument(name string, f store.ItemFetcher, m *middleware.Metrics) *Instrumented {
	return &Instrumented{Name: name, Fetcher: f, Metrics: m}
}

// FetchItem implements store.ItemFetcher.
func (i *Instrumented) FetchItem(ctx context.Context, id string) (store.Item, error) {
	ctx, span := middleware.StartSpan(ctx, "source.FetchItem",
		attribute.String("source.name", i.Name),
		attribute.String("item.id", id),
	)
	start := time.Now()
	item, err := i.Fetcher.FetchItem(ctx, id)
	i.Metrics.RecordFetch(i.Name, time.Since(start), err)
	middleware.EndSpan(span, err)
	return item, err
}
