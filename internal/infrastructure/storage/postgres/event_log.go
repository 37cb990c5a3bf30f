package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"docgate/internal/core/id"
	"docgate/internal/domain/events"
	"docgate/pkg/logger"
)

// CompressionAlgo specifies the compression algorithm used for a payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// storedEvent is the row shape of the event log.
type storedEvent struct {
	ID                id.ID           `db:"id"`
	Name              string          `db:"name"`
	ActorID           string          `db:"actor_id"`
	Payload           json.RawMessage `db:"payload"`
	PayloadCompressed []byte          `db:"payload_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// Compile-time check that EventLog implements events.Logger.
var _ events.Logger = (*EventLog)(nil)

// EventLog is the PostgreSQL event store. Large payloads are stored
// zstd-compressed; small ones stay as plain JSON so they remain queryable.
type EventLog struct {
	pool              *Pool
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewEventLog creates an event log over the given pool.
func NewEventLog(pool *Pool) (*EventLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &EventLog{
		pool:              pool,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// LogEvent implements events.Logger. A storage failure is logged and
// returned, but callers on the request path are expected to ignore it.
func (l *EventLog) LogEvent(ctx context.Context, name string, payload map[string]any, actorID string) error {
	row := storedEvent{
		ID:              id.New(),
		Name:            name,
		ActorID:         actorID,
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}

	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		if len(encoded) > l.compressThreshold {
			row.PayloadCompressed = l.encoder.EncodeAll(encoded, nil)
			row.CompressionAlgo = CompressionZstd
		} else {
			row.Payload = encoded
		}
	}

	sql := `
		INSERT INTO event_logs (
			id, name, actor_id, payload, payload_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := l.pool.Exec(ctx, sql,
		row.ID, row.Name, row.ActorID,
		row.Payload, row.PayloadCompressed, row.CompressionAlgo,
		row.CreatedAt,
	)
	if err != nil {
		logger.Error(ctx, "event log write failed",
			"event", name,
			"error", err,
		)
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Recent returns the newest events, payloads decompressed.
func (l *EventLog) Recent(ctx context.Context, limit int) ([]events.Entry, error) {
	sql := `
		SELECT id, name, actor_id, payload, payload_compressed, compression_algo, created_at
		FROM event_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := l.pool.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var entries []events.Entry
	for rows.Next() {
		var row storedEvent
		err := rows.Scan(
			&row.ID, &row.Name, &row.ActorID,
			&row.Payload, &row.PayloadCompressed, &row.CompressionAlgo,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		raw := row.Payload
		if row.CompressionAlgo == CompressionZstd && len(row.PayloadCompressed) > 0 {
			decompressed, err := l.decoder.DecodeAll(row.PayloadCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress event payload: %w", err)
			}
			raw = decompressed
		}

		entry := events.Entry{
			ID:         row.ID.String(),
			Name:       row.Name,
			OccurredBy: row.ActorID,
			OccurredAt: row.CreatedAt,
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &entry.Payload); err != nil {
				return nil, fmt.Errorf("decode event payload: %w", err)
			}
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
