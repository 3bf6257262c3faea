package group

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("group not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, g *Group) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Group, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Group, error) {
	return r.first(ctx, "id = ?", id)
}

// List returns every group ordered by title, for form choices.
func (r *Repository) List(ctx context.Context) ([]Group, error) {
	var groups []Group
	err := r.db.WithContext(ctx).Order("title ASC").Find(&groups).Error
	return groups, err
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Group{}).Count(&count).Error
	return count, err
}

func (r *Repository) first(ctx context.Context, query string, arg string) (*Group, error) {
	var g Group
	if err := r.db.WithContext(ctx).Where(query, arg).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}
