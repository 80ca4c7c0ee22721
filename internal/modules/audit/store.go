// README: Durable audit sink backed by PostgreSQL.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pelorus/internal/types"
)

// Store implements Sink over the safety_audit_log table. Read queries are
// the post-incident investigation surface; callers fall back to the
// in-memory buffer when a query fails.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, e Entry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO safety_audit_log (id, ts, user_id, request_id, action, details, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(e.ID), e.Timestamp, nullable(e.UserID), e.RequestID,
		string(e.Action), details, string(e.Result),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) ByRequestID(ctx context.Context, requestID string) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, ts, user_id, request_id, action, details, result
		FROM safety_audit_log
		WHERE request_id = $1
		ORDER BY ts`, requestID)
	if err != nil {
		return nil, fmt.Errorf("query audit by request: %w", err)
	}
	return collect(rows)
}

func (s *Store) Critical(ctx context.Context, from, to time.Time) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, ts, user_id, request_id, action, details, result
		FROM safety_audit_log
		WHERE result = 'critical' AND ts >= $1 AND ts <= $2
		ORDER BY ts`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query critical audit entries: %w", err)
	}
	return collect(rows)
}

// Overrides returns the override_applied entries in the range, optionally
// narrowed to one user.
func (s *Store) Overrides(ctx context.Context, from, to time.Time, userID string) ([]Entry, error) {
	query := `
		SELECT id, ts, user_id, request_id, action, details, result
		FROM safety_audit_log
		WHERE action = 'override_applied' AND ts >= $1 AND ts <= $2`
	args := []any{from, to}
	if userID != "" {
		query += ` AND user_id = $3`
		args = append(args, userID)
	}
	query += ` ORDER BY ts`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query override audit entries: %w", err)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Entry, error) {
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			id      string
			userID  *string
			action  string
			details []byte
			result  string
		)
		if err := rows.Scan(&id, &e.Timestamp, &userID, &e.RequestID, &action, &details, &result); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.ID = types.ID(id)
		e.Action = Action(action)
		e.Result = Result(result)
		if userID != nil {
			e.UserID = *userID
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &e.Details)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
