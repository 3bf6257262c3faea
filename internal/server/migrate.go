package server

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ArthurDelaporte/Yatube-Back/internal/follow"
	"github.com/ArthurDelaporte/Yatube-Back/internal/group"
	"github.com/ArthurDelaporte/Yatube-Back/internal/post"
	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
)

// Migrate creates or updates every table. Order follows the foreign keys.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&group.Group{},
		&post.Post{},
		&post.Comment{},
		&follow.Follow{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
