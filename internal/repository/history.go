package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// SQLHistoryRepo implements HistoryRepo. Each (user, feature) list carries
// a monotonically increasing seq; trimming keeps the highest
// domain.HistoryLimit values.
type SQLHistoryRepo struct {
	uow     db.UnitOfWork
	conn    db.DBTX
	dialect db.Dialect
}

func NewHistoryRepo(conn db.DBTX, uow db.UnitOfWork, dialect db.Dialect) *SQLHistoryRepo {
	return &SQLHistoryRepo{uow: uow, conn: conn, dialect: dialect}
}

// Push inserts e and trims older entries of the same list in one
// transaction.
func (r *SQLHistoryRepo) Push(ctx context.Context, e *domain.HistoryEntry) error {
	if !domain.ValidHistoryFeatures[e.Feature] {
		return fmt.Errorf("unknown history feature %q", e.Feature)
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		q := queryer{db: tx, dialect: r.dialect}

		var next int64
		err := tx.QueryRowContext(ctx,
			q.q(`SELECT COALESCE(MAX(seq), 0) + 1 FROM history_entries WHERE user_id = ? AND feature = ?`),
			e.UserID, string(e.Feature),
		).Scan(&next)
		if err != nil {
			return fmt.Errorf("reading history seq: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			q.q(`INSERT INTO history_entries (id, user_id, feature, seq, input, output, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`),
			e.ID, e.UserID, string(e.Feature), next, e.Input, e.Output, formatTime(e.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting history entry: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			q.q(`DELETE FROM history_entries WHERE user_id = ? AND feature = ? AND seq <= ?`),
			e.UserID, string(e.Feature), next-domain.HistoryLimit,
		)
		if err != nil {
			return fmt.Errorf("trimming history: %w", err)
		}
		return nil
	})
}

// List returns the entries most recent first.
func (r *SQLHistoryRepo) List(ctx context.Context, userID string, feature domain.HistoryFeature) ([]*domain.HistoryEntry, error) {
	rows, err := r.conn.QueryContext(ctx,
		r.dialect.Rebind(`SELECT id, user_id, feature, input, output, created_at
			FROM history_entries WHERE user_id = ? AND feature = ? ORDER BY seq DESC`),
		userID, string(feature),
	)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var feat, createdAt string
		if err := rows.Scan(&e.ID, &e.UserID, &feat, &e.Input, &e.Output, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.Feature = domain.HistoryFeature(feat)
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func (r *SQLHistoryRepo) Clear(ctx context.Context, userID string, feature domain.HistoryFeature) error {
	_, err := r.conn.ExecContext(ctx,
		r.dialect.Rebind(`DELETE FROM history_entries WHERE user_id = ? AND feature = ?`),
		userID, string(feature),
	)
	if err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}
