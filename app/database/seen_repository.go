package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRecordNotFound indicates a publish was recorded for an identity that
	// was never claimed. This is a logic error, not an expected condition.
	ErrRecordNotFound = errors.New("no processing record exists for identity")

	// ErrAlreadyPublished indicates the record is already in the published
	// state. Callers treat this as an idempotent no-op.
	ErrAlreadyPublished = errors.New("record is already published")
)

var _ SeenItemStore = (*SeenItemRepository)(nil)

// SeenItemRepository handles database operations for processing records
type SeenItemRepository struct {
	db *DB
}

// NewSeenItemRepository creates a new seen item repository
func NewSeenItemRepository(db *DB) *SeenItemRepository {
	return &SeenItemRepository{db: db}
}

// TryClaim inserts a claimed record for the identity. The conditional insert
// is a single statement so that two overlapping runs racing on the same
// identity resolve inside SQLite: exactly one insert lands, the other
// conflicts and reports no rows affected.
func (r *SeenItemRepository) TryClaim(identity string, expiresAt time.Time) (bool, error) {
	if identity == "" {
		return false, fmt.Errorf("identity cannot be empty")
	}

	result, err := r.db.Exec(`
		INSERT INTO seen_items (identity, status, claimed_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (identity) DO NOTHING
	`, identity, StatusClaimed, time.Now().UTC(), expiresAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to claim identity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}

	return rows == 1, nil
}

// MarkPublished transitions a claimed record to published and extends its
// expiry horizon. The status guard in the WHERE clause means a published
// record is never touched again.
func (r *SeenItemRepository) MarkPublished(identity, postRef string, expiresAt time.Time) error {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		UPDATE seen_items
		SET status = ?, published_at = ?, post_ref = ?, expires_at = ?
		WHERE identity = ? AND status = ?
	`, StatusPublished, now, postRef, expiresAt.UTC(), identity, StatusClaimed)
	if err != nil {
		return fmt.Errorf("failed to mark identity published: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read publish result: %w", err)
	}
	if rows == 1 {
		return nil
	}

	var status Status
	err = r.db.QueryRow("SELECT status FROM seen_items WHERE identity = ?", identity).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("identity %q: %w", identity, ErrRecordNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to inspect record status: %w", err)
	}
	if status == StatusPublished {
		return fmt.Errorf("identity %q: %w", identity, ErrAlreadyPublished)
	}

	return fmt.Errorf("identity %q has unexpected status %q", identity, status)
}

// Exists reports whether any record exists for the identity
func (r *SeenItemRepository) Exists(identity string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM seen_items WHERE identity = ?", identity).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check record existence: %w", err)
	}
	return true, nil
}

// GetRecord returns the processing record for the identity, or nil if none exists
func (r *SeenItemRepository) GetRecord(identity string) (*SeenItem, error) {
	var item SeenItem
	var postRef sql.NullString
	err := r.db.QueryRow(`
		SELECT identity, status, claimed_at, published_at, post_ref, expires_at
		FROM seen_items
		WHERE identity = ?
	`, identity).Scan(&item.Identity, &item.Status, &item.ClaimedAt,
		&item.PublishedAt, &postRef, &item.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	item.PostRef = postRef.String
	return &item, nil
}

// DeleteExpired removes records whose expiry horizon has passed
func (r *SeenItemRepository) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM seen_items WHERE expires_at <= ?", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired records: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read delete result: %w", err)
	}

	return rows, nil
}

// GetStats returns record counts by status
func (r *SeenItemRepository) GetStats() (Stats, error) {
	var stats Stats
	err := r.db.QueryRow(`
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN status = 'claimed' THEN 1 ELSE 0 END), 0) as claimed,
			COALESCE(SUM(CASE WHEN status = 'published' THEN 1 ELSE 0 END), 0) as published
		FROM seen_items
	`).Scan(&stats.Total, &stats.Claimed, &stats.Published)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to get record stats: %w", err)
	}

	return stats, nil
}
