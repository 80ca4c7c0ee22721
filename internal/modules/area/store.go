// README: Area store backed by Postgres with a Redis read-through cache.
package area

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"pelorus/internal/types"
)

const (
	areaCacheKey = "safety:areas:active"
	areaCacheTTL = 5 * time.Minute
)

// Store implements Provider over the restricted_areas table, with the
// active catalog cached in Redis for the refresh interval. Cache failures
// are ignored: Postgres is authoritative and the registry tolerates fetch
// errors anyway.
type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

// NewStore returns a Store. redis may be nil to disable caching.
func NewStore(db *pgxpool.Pool, redis *redis.Client) *Store {
	return &Store{db: db, redis: redis}
}

// QueryActiveAreas fetches every active area row. Optional columns may be
// NULL; rows with unusable geometry are still returned (they simply never
// match) so operators can see them in listings.
func (s *Store) QueryActiveAreas(ctx context.Context) ([]RestrictedArea, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, type,
		       bound_north, bound_south, bound_east, bound_west,
		       polygon, description, restrictions, active,
		       schedule_start, schedule_end, recurring,
		       authority, penalty
		FROM restricted_areas
		WHERE active = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("query restricted areas: %w", err)
	}
	defer rows.Close()

	var areas []RestrictedArea
	for rows.Next() {
		a, err := scanArea(rows)
		if err != nil {
			return nil, fmt.Errorf("scan restricted area: %w", err)
		}
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restricted areas: %w", err)
	}

	s.toCache(ctx, areas)
	return areas, nil
}

// UpsertArea persists a runtime-added area so it survives the next refresh.
func (s *Store) UpsertArea(ctx context.Context, a RestrictedArea) error {
	var north, south, east, west *float64
	if a.Bounds != nil {
		north, south = &a.Bounds.North, &a.Bounds.South
		east, west = &a.Bounds.East, &a.Bounds.West
	}
	var polygon []byte
	if len(a.Polygon) > 0 {
		var err error
		polygon, err = json.Marshal(a.Polygon)
		if err != nil {
			return fmt.Errorf("marshal polygon: %w", err)
		}
	}
	var penalty *string
	if a.Penalty != "" {
		penalty = &a.Penalty
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO restricted_areas (
			id, name, type,
			bound_north, bound_south, bound_east, bound_west,
			polygon, description, restrictions, active,
			schedule_start, schedule_end, recurring,
			authority, penalty
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, type = EXCLUDED.type,
			bound_north = EXCLUDED.bound_north, bound_south = EXCLUDED.bound_south,
			bound_east = EXCLUDED.bound_east, bound_west = EXCLUDED.bound_west,
			polygon = EXCLUDED.polygon, description = EXCLUDED.description,
			restrictions = EXCLUDED.restrictions, active = EXCLUDED.active,
			schedule_start = EXCLUDED.schedule_start, schedule_end = EXCLUDED.schedule_end,
			recurring = EXCLUDED.recurring,
			authority = EXCLUDED.authority, penalty = EXCLUDED.penalty`,
		a.ID, a.Name, string(a.Type),
		north, south, east, west,
		polygon, a.Description, a.Restrictions, a.Active,
		a.Schedule.Start, a.Schedule.End, a.Schedule.Recurring,
		a.Authority, penalty,
	)
	if err != nil {
		return fmt.Errorf("upsert restricted area: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// DeleteArea removes a persisted area and reports whether a row existed.
func (s *Store) DeleteArea(ctx context.Context, id string) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM restricted_areas WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete restricted area: %w", err)
	}
	s.invalidate(ctx)
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArea(row rowScanner) (RestrictedArea, error) {
	var (
		a              RestrictedArea
		typ            string
		north, south   *float64
		east, west     *float64
		polygonJSON    []byte
		scheduleEnd    *time.Time
		penalty        *string
	)
	err := row.Scan(
		&a.ID, &a.Name, &typ,
		&north, &south, &east, &west,
		&polygonJSON, &a.Description, &a.Restrictions, &a.Active,
		&a.Schedule.Start, &scheduleEnd, &a.Schedule.Recurring,
		&a.Authority, &penalty,
	)
	if err != nil {
		return RestrictedArea{}, err
	}

	a.Type = Type(typ)
	a.Schedule.End = scheduleEnd
	if penalty != nil {
		a.Penalty = *penalty
	}
	if north != nil && south != nil && east != nil && west != nil {
		a.Bounds = &types.GeographicBounds{
			North: *north, South: *south, East: *east, West: *west,
		}
	}
	if len(polygonJSON) > 0 {
		// A malformed polygon leaves the field empty; the area then simply
		// never matches, which is the degenerate-data contract.
		_ = json.Unmarshal(polygonJSON, &a.Polygon)
	}
	return a, nil
}

func (s *Store) fromCache(ctx context.Context) ([]RestrictedArea, bool) {
	if s.redis == nil {
		return nil, false
	}
	val, err := s.redis.Get(ctx, areaCacheKey).Result()
	if err != nil {
		return nil, false
	}
	var areas []RestrictedArea
	if err := json.Unmarshal([]byte(val), &areas); err != nil {
		return nil, false
	}
	return areas, true
}

func (s *Store) toCache(ctx context.Context, areas []RestrictedArea) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(areas)
	if err != nil {
		return
	}
	_ = s.redis.Set(ctx, areaCacheKey, payload, areaCacheTTL).Err()
}

func (s *Store) invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, areaCacheKey).Err()
}
