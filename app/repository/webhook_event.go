package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gridmarket/ms-go-settlement/app/entity"
)

var (
	ErrWebhookEventNotFound      = errors.New("webhook event not found")
	ErrWebhookEventAlreadyQueued = errors.New("webhook event already queued")
)

type WebhookEventRepository struct{}

func NewWebhookEventRepository() *WebhookEventRepository {
	return &WebhookEventRepository{}
}

const webhookEventColumns = `id, reference, payload, signature, processed, attempts, last_error, processed_at, created_at, updated_at`

// Create queues one event per reference. A duplicate delivery for a
// reference that is already queued returns ErrWebhookEventAlreadyQueued so
// the receiver can still acknowledge it.
func (r *WebhookEventRepository) Create(ctx context.Context, q DBTX, event *entity.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (reference, payload, signature, processed, attempts, last_error, processed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := q.ExecContext(ctx, query,
		event.Reference,
		event.Payload,
		event.Signature,
		event.Processed,
		event.Attempts,
		nullableStringValue(event.LastError),
		nullableTimeValue(event.ProcessedAt),
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrWebhookEventAlreadyQueued
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)
	return nil
}

// ListUnprocessed returns queued events still under the attempt ceiling,
// oldest first.
func (r *WebhookEventRepository) ListUnprocessed(ctx context.Context, q DBTX, maxAttempts int32, limit int32) ([]*entity.WebhookEvent, error) {
	query := `
		SELECT ` + webhookEventColumns + `
		FROM webhook_events
		WHERE processed = FALSE AND attempts < ?
		ORDER BY created_at ASC
		LIMIT ?
	`
	rows, err := q.QueryContext(ctx, query, maxAttempts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*entity.WebhookEvent, 0)
	for rows.Next() {
		event := &entity.WebhookEvent{}
		if err := scanWebhookEvent(rows, event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// RecordAttempt increments the attempt counter and stores the failure
// reason, leaving the event queued for the next pass.
func (r *WebhookEventRepository) RecordAttempt(ctx context.Context, q DBTX, id uint64, lastError string, now time.Time) error {
	query := `UPDATE webhook_events SET attempts = attempts + 1, last_error = ?, updated_at = ? WHERE id = ?`
	return r.exec(ctx, q, query, lastError, now, id)
}

// MarkProcessed retires the event once the payment reached a terminal state.
func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, q DBTX, id uint64, note *string, now time.Time) error {
	query := `UPDATE webhook_events SET processed = TRUE, processed_at = ?, attempts = attempts + 1, last_error = ?, updated_at = ? WHERE id = ?`
	return r.exec(ctx, q, query, now, nullableStringValue(note), now, id)
}

func (r *WebhookEventRepository) exec(ctx context.Context, q DBTX, query string, args ...interface{}) error {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrWebhookEventNotFound
	}
	return nil
}

func scanWebhookEvent(scan rowScanner, event *entity.WebhookEvent) error {
	var lastError sql.NullString
	var processedAt sql.NullTime

	err := scan.Scan(
		&event.ID,
		&event.Reference,
		&event.Payload,
		&event.Signature,
		&event.Processed,
		&event.Attempts,
		&lastError,
		&processedAt,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return err
	}

	event.LastError = stringPtrFromNull(lastError)
	event.ProcessedAt = timePtrFromNull(processedAt)
	return nil
}
