package post

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ArthurDelaporte/Yatube-Back/internal/group"
	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
)

type Post struct {
	ID        string       `gorm:"primaryKey"`
	CreatedAt time.Time    `gorm:"index"`
	Text      string       `gorm:"type:text;not null"`
	AuthorID  string       `gorm:"not null;index"`
	Author    user.User    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	GroupID   *string      `gorm:"index"`
	Group     *group.Group `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
	Image     string       // storage key, empty when the post has no image
	ImageURL  string
	Comments  []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// String is the first 15 characters of the text.
func (p Post) String() string {
	runes := []rune(p.Text)
	if len(runes) > 15 {
		return string(runes[:15])
	}
	return p.Text
}
