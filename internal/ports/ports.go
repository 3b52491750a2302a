package ports

import (
	"context"
	"time"

	"DisclosureNotifier/internal/domain"
)

// DocumentSource pulls fresh disclosure records from one upstream provider.
// Implementations apply their own lookback window policy, dedupe records
// within a single fetch, and normalize tickers before emitting.
type DocumentSource interface {
	Name() string
	Fetch(ctx context.Context, day time.Time) ([]domain.Document, error)
}

// Classifier maps disclosure text to a notification category.
type Classifier interface {
	Classify(text string) domain.Category
}

// Ledger is the bounded persistent set of delivered document keys.
// Not safe for concurrent writers; the pipeline serializes access.
type Ledger interface {
	Contains(key string) bool
	Add(key string)
	Len() int
	Persist() error
}

// Enricher resolves supplementary financial metrics for a ticker.
// An error means "unavailable"; the pipeline proceeds without metrics.
type Enricher interface {
	Enrich(ctx context.Context, ticker string) (*domain.Enrichment, error)
}

// Notifier delivers a formatted message to one destination channel.
type Notifier interface {
	Deliver(ctx context.Context, msg domain.Message) (domain.DeliveryResult, error)
}

// DeliveryStore records delivered notifications for audit/history.
type DeliveryStore interface {
	SaveDelivered(ctx context.Context, rec domain.DeliveredRecord) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
