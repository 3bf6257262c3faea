package follow

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSelfFollow = errors.New("users cannot follow themselves")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Ensure creates the (userID, authorID) edge unless it already exists and
// reports whether a row was inserted. The unique index makes concurrent
// calls safe.
func (r *Repository) Ensure(ctx context.Context, userID, authorID string) (bool, error) {
	if userID == authorID {
		return false, ErrSelfFollow
	}
	f := Follow{UserID: userID, AuthorID: authorID}
	res := r.db.WithContext(ctx).
		Omit("User", "Author").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the edge if present and reports whether one was removed.
func (r *Repository) Delete(ctx context.Context, userID, authorID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) Exists(ctx context.Context, userID, authorID string) (bool, error) {
	var f Follow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Repository) CountFollowers(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Follow{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Follow{}).Count(&count).Error
	return count, err
}
