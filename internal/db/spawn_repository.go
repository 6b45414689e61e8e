package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/pursuit/internal/model"
)

// SpawnRepository handles agent spawn CRUD operations
type SpawnRepository struct {
	pool *pgxpool.Pool
}

// NewSpawnRepository creates a new spawn repository
func NewSpawnRepository(pool *pgxpool.Pool) *SpawnRepository {
	return &SpawnRepository{pool: pool}
}

// LoadAll loads all spawns with their weapons from database
func (r *SpawnRepository) LoadAll(ctx context.Context) ([]*model.AgentSpawn, error) {
	query := `
		SELECT spawn_id, template_id, COALESCE(route_id, 0), x, y, z
		FROM agent_spawns
		ORDER BY spawn_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading all spawns: %w", err)
	}
	defer rows.Close()

	spawns := make([]*model.AgentSpawn, 0, 16)
	byID := make(map[int64]*model.AgentSpawn)

	for rows.Next() {
		s := &model.AgentSpawn{}
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.RouteID, &s.Position.X, &s.Position.Y, &s.Position.Z); err != nil {
			return nil, fmt.Errorf("scanning spawn row: %w", err)
		}
		spawns = append(spawns, s)
		byID[s.ID] = s
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn rows: %w", err)
	}

	if err := r.loadWeapons(ctx, byID); err != nil {
		return nil, err
	}

	return spawns, nil
}

func (r *SpawnRepository) loadWeapons(ctx context.Context, byID map[int64]*model.AgentSpawn) error {
	query := `
		SELECT spawn_id, name, weapon_range, shot_duration_ms, magazine, reload_time_ms
		FROM spawn_weapons
		ORDER BY spawn_id, slot
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("loading spawn weapons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			spawnID          int64
			w                model.WeaponSpec
			shotMS, reloadMS int64
			magazine         int32
		)
		if err := rows.Scan(&spawnID, &w.Name, &w.Range, &shotMS, &magazine, &reloadMS); err != nil {
			return fmt.Errorf("scanning spawn weapon row: %w", err)
		}

		s, ok := byID[spawnID]
		if !ok {
			continue
		}
		w.ShotDuration = time.Duration(shotMS) * time.Millisecond
		w.ReloadTime = time.Duration(reloadMS) * time.Millisecond
		w.Magazine = int(magazine)
		s.Weapons = append(s.Weapons, w)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating spawn weapon rows: %w", err)
	}
	return nil
}

// Create creates new spawn with its weapons in one transaction.
func (r *SpawnRepository) Create(ctx context.Context, spawn *model.AgentSpawn) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var routeID *int64
	if spawn.RouteID != 0 {
		routeID = &spawn.RouteID
	}

	query := `
		INSERT INTO agent_spawns (template_id, route_id, x, y, z)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING spawn_id
	`

	var spawnID int64
	err = tx.QueryRow(ctx, query,
		spawn.TemplateID, routeID, spawn.Position.X, spawn.Position.Y, spawn.Position.Z,
	).Scan(&spawnID)
	if err != nil {
		return 0, fmt.Errorf("creating spawn for template %d: %w", spawn.TemplateID, err)
	}

	if len(spawn.Weapons) > 0 {
		rows := make([][]any, 0, len(spawn.Weapons))
		for slot, w := range spawn.Weapons {
			rows = append(rows, []any{
				spawnID, int32(slot), w.Name, w.Range,
				w.ShotDuration.Milliseconds(), int32(w.Magazine), w.ReloadTime.Milliseconds(),
			})
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"spawn_weapons"},
			[]string{"spawn_id", "slot", "name", "weapon_range", "shot_duration_ms", "magazine", "reload_time_ms"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting weapons for spawn %d: %w", spawnID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit spawn %d: %w", spawnID, err)
	}
	return spawnID, nil
}
