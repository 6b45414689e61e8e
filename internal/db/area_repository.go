package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/pursuit/internal/model"
)

// AreaRepository handles observation area CRUD operations
type AreaRepository struct {
	pool *pgxpool.Pool
}

// NewAreaRepository creates a new area repository
func NewAreaRepository(pool *pgxpool.Pool) *AreaRepository {
	return &AreaRepository{pool: pool}
}

// LoadByTemplate loads observation areas of a template ordered by area ID.
func (r *AreaRepository) LoadByTemplate(ctx context.Context, templateID int32) ([]model.AreaSpec, error) {
	query := `
		SELECT area_id, observation, priority, radius, angle, yaw,
		       offset_x, offset_y, offset_z, target_mask, chase_speed
		FROM observation_areas
		WHERE template_id = $1
		ORDER BY area_id
	`

	rows, err := r.pool.Query(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("loading areas of template %d: %w", templateID, err)
	}
	defer rows.Close()

	var areas []model.AreaSpec
	for rows.Next() {
		var (
			a           model.AreaSpec
			areaID      int32
			observation string
			targetMask  int64
		)
		if err := rows.Scan(
			&areaID, &observation, &a.Priority, &a.Radius, &a.Angle, &a.Yaw,
			&a.Offset.X, &a.Offset.Y, &a.Offset.Z, &targetMask, &a.ChaseSpeed,
		); err != nil {
			return nil, fmt.Errorf("scanning area of template %d: %w", templateID, err)
		}

		if a.Type, err = model.ParseObservationType(observation); err != nil {
			return nil, fmt.Errorf("template %d area %d: %w", templateID, areaID, err)
		}
		a.ID = uint32(areaID)
		a.TargetMask = uint32(targetMask)
		areas = append(areas, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating areas of template %d: %w", templateID, err)
	}

	return areas, nil
}

// Create adds an observation area to a template.
func (r *AreaRepository) Create(ctx context.Context, templateID int32, a model.AreaSpec) error {
	query := `
		INSERT INTO observation_areas
		(template_id, area_id, observation, priority, radius, angle, yaw,
		 offset_x, offset_y, offset_z, target_mask, chase_speed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		templateID, int32(a.ID), a.Type.String(), a.Priority, a.Radius, a.Angle, a.Yaw,
		a.Offset.X, a.Offset.Y, a.Offset.Z, int64(a.TargetMask), a.ChaseSpeed,
	)
	if err != nil {
		return fmt.Errorf("creating area %d of template %d: %w", a.ID, templateID, err)
	}
	return nil
}
