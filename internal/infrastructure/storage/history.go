// Package storage holds the optional Postgres delivery-history store.
// The JSON ledger stays the dedup authority; this store is write-only audit.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"DisclosureNotifier/internal/domain"
	"DisclosureNotifier/internal/ports"
)

// HistoryStore records delivered notifications into Postgres.
type HistoryStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.DeliveryStore = (*HistoryStore)(nil)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*HistoryStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history store: %w", err)
	}
	return NewHistoryStore(db), nil
}

// NewHistoryStore wires an existing sql.DB implementation.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveDelivered upserts one delivered-notification row.
func (s *HistoryStore) SaveDelivered(ctx context.Context, rec domain.DeliveredRecord) error {
	if s.db == nil {
		return nil
	}

	query, args, err := insertDelivered(s.builder, rec)
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert delivered: %w", err)
	}

	return nil
}

// Close releases the underlying connection pool.
func (s *HistoryStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func insertDelivered(builder sq.StatementBuilderType, rec domain.DeliveredRecord) (string, []any, error) {
	return builder.
		Insert("delivered_notifications").
		Columns("document_key", "filer_name", "category", "channel", "delivered_at").
		Values(rec.DocumentKey, rec.FilerName, string(rec.Category), rec.Channel, rec.DeliveredAt).
		Suffix("ON CONFLICT (document_key) DO NOTHING").
		ToSql()
}
