package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/pursuit/internal/model"
)

// TemplateRepository handles agent template CRUD operations
type TemplateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// LoadTemplate loads agent template by ID. Areas are loaded by AreaRepository.
func (r *TemplateRepository) LoadTemplate(ctx context.Context, templateID int32) (*model.AgentTemplate, error) {
	query := `
		SELECT template_id, name, attack_distance, body_radius, movement_speed, target_ultimate
		FROM agent_templates
		WHERE template_id = $1
	`

	var t model.AgentTemplate
	err := r.pool.QueryRow(ctx, query, templateID).Scan(
		&t.ID, &t.Name, &t.AttackDistance, &t.BodyRadius, &t.MovementSpeed, &t.TargetUltimate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("loading agent template %d: %w", templateID, ErrNotFound)
		}
		return nil, fmt.Errorf("loading agent template %d: %w", templateID, err)
	}

	return &t, nil
}

// Create creates a new template and returns its ID.
func (r *TemplateRepository) Create(ctx context.Context, t *model.AgentTemplate) (int32, error) {
	query := `
		INSERT INTO agent_templates (name, attack_distance, body_radius, movement_speed, target_ultimate)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING template_id
	`

	var templateID int32
	err := r.pool.QueryRow(ctx, query,
		t.Name, t.AttackDistance, t.BodyRadius, t.MovementSpeed, t.TargetUltimate,
	).Scan(&templateID)
	if err != nil {
		return 0, fmt.Errorf("creating agent template %q: %w", t.Name, err)
	}

	return templateID, nil
}
