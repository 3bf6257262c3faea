package post

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ArthurDelaporte/Yatube-Back/internal/pagination"
)

var ErrNotFound = errors.New("post not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// feed is a filtered post collection, newest first.
type feed struct {
	db    *gorm.DB
	scope func(*gorm.DB) *gorm.DB
}

func (f feed) query(ctx context.Context) *gorm.DB {
	return f.db.WithContext(ctx).Model(&Post{}).Scopes(f.scope)
}

func (f feed) Count(ctx context.Context) (int64, error) {
	var count int64
	err := f.query(ctx).Count(&count).Error
	return count, err
}

func (f feed) Fetch(ctx context.Context, offset, limit int) ([]Post, error) {
	var posts []Post
	err := f.query(ctx).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *Repository) feed(scope func(*gorm.DB) *gorm.DB) pagination.Source[Post] {
	return feed{db: r.db, scope: scope}
}

// All is the home feed.
func (r *Repository) All() pagination.Source[Post] {
	return r.feed(func(db *gorm.DB) *gorm.DB { return db })
}

func (r *Repository) ByGroup(groupID string) pagination.Source[Post] {
	return r.feed(func(db *gorm.DB) *gorm.DB {
		return db.Where("group_id = ?", groupID)
	})
}

func (r *Repository) ByAuthor(authorID string) pagination.Source[Post] {
	return r.feed(func(db *gorm.DB) *gorm.DB {
		return db.Where("author_id = ?", authorID)
	})
}

// ByFollower holds posts by every author userID follows.
func (r *Repository) ByFollower(userID string) pagination.Source[Post] {
	return r.feed(func(db *gorm.DB) *gorm.DB {
		followed := db.Session(&gorm.Session{NewDB: true}).
			Table("follows").
			Select("author_id").
			Where("user_id = ?", userID)
		return db.Where("author_id IN (?)", followed)
	})
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Post, error) {
	var p Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(ctx context.Context, p *Post) error {
	return r.db.WithContext(ctx).Omit("Author", "Group").Create(p).Error
}

// Update writes the editable fields only; author and creation time never change.
func (r *Repository) Update(ctx context.Context, p *Post) error {
	return r.db.WithContext(ctx).
		Model(&Post{ID: p.ID}).
		Updates(map[string]interface{}{
			"text":      p.Text,
			"group_id":  p.GroupID,
			"image":     p.Image,
			"image_url": p.ImageURL,
		}).Error
}

func (r *Repository) CountByAuthor(ctx context.Context, authorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Post{}).Count(&count).Error
	return count, err
}

func (r *Repository) CreateComment(ctx context.Context, cm *Comment) error {
	return r.db.WithContext(ctx).Omit("Author").Create(cm).Error
}

// Comments lists a post's comments in the order they were written.
func (r *Repository) Comments(ctx context.Context, postID string) ([]Comment, error) {
	var comments []Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *Repository) CountComments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Comment{}).Count(&count).Error
	return count, err
}

// CountCreatedBetween counts posts created in [start, end).
func (r *Repository) CountCreatedBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Post{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}
