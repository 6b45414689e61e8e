package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/pursuit/internal/model"
)

// RouteRepository handles patrol route CRUD operations
type RouteRepository struct {
	pool *pgxpool.Pool
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(pool *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{pool: pool}
}

// LoadRoute loads a route with its waypoints ordered by seq.
func (r *RouteRepository) LoadRoute(ctx context.Context, routeID int64) (*model.PatrolRoute, error) {
	route := &model.PatrolRoute{ID: routeID}

	err := r.pool.QueryRow(ctx,
		`SELECT name FROM patrol_routes WHERE route_id = $1`, routeID,
	).Scan(&route.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("loading route %d: %w", routeID, ErrNotFound)
		}
		return nil, fmt.Errorf("loading route %d: %w", routeID, err)
	}

	query := `
		SELECT seq, x, y, z, action, priority, accuracy_radius, movement_speed, transfer_delay_ms
		FROM patrol_points
		WHERE route_id = $1
		ORDER BY seq
	`

	rows, err := r.pool.Query(ctx, query, routeID)
	if err != nil {
		return nil, fmt.Errorf("loading points of route %d: %w", routeID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			w       model.RouteWaypoint
			action  string
			delayMS int64
		)
		if err := rows.Scan(
			&w.Seq, &w.Position.X, &w.Position.Y, &w.Position.Z,
			&action, &w.Priority, &w.AccuracyRadius, &w.MovementSpeed, &delayMS,
		); err != nil {
			return nil, fmt.Errorf("scanning point of route %d: %w", routeID, err)
		}

		if w.Action, err = model.ParsePointAction(action); err != nil {
			return nil, fmt.Errorf("route %d point %d: %w", routeID, w.Seq, err)
		}
		w.TransferDelay = time.Duration(delayMS) * time.Millisecond
		route.Waypoints = append(route.Waypoints, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating points of route %d: %w", routeID, err)
	}

	return route, nil
}

// Create inserts the route and its waypoints in one transaction.
// Waypoints are stored in slice order regardless of their Seq.
func (r *RouteRepository) Create(ctx context.Context, route *model.PatrolRoute) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var routeID int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO patrol_routes (name) VALUES ($1) RETURNING route_id`, route.Name,
	).Scan(&routeID); err != nil {
		return 0, fmt.Errorf("creating route %q: %w", route.Name, err)
	}

	if len(route.Waypoints) > 0 {
		batch := &pgx.Batch{}
		for i, w := range route.Waypoints {
			batch.Queue(
				`INSERT INTO patrol_points
				 (route_id, seq, x, y, z, action, priority, accuracy_radius, movement_speed, transfer_delay_ms)
				 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				routeID, i, w.Position.X, w.Position.Y, w.Position.Z,
				w.Action.String(), w.Priority, w.AccuracyRadius, w.MovementSpeed,
				w.TransferDelay.Milliseconds(),
			)
		}
		br := tx.SendBatch(ctx, batch)
		for range route.Waypoints {
			if _, err := br.Exec(); err != nil {
				br.Close() //nolint:errcheck
				return 0, fmt.Errorf("creating points of route %d: %w", routeID, err)
			}
		}
		if err := br.Close(); err != nil {
			return 0, fmt.Errorf("close point batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit route %d: %w", routeID, err)
	}
	return routeID, nil
}
