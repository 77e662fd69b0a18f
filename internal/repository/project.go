package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/regioninvest/portal/internal/domain"
)

// ProjectRepository handles project data access operations.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindByID retrieves a project by its ID.
func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	var project domain.Project
	err := r.db.GetContext(ctx, &project,
		`SELECT id, name, description, region, owner_id, created_at, updated_at
		 FROM projects WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find project by id %d: %w", id, err)
	}
	return &project, nil
}

// ListByOwner retrieves all projects owned by the given user, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.SelectContext(ctx, &projects,
		`SELECT id, name, description, region, owner_id, created_at, updated_at
		 FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects by owner %d: %w", ownerID, err)
	}
	return projects, nil
}
