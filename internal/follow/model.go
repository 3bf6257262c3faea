package follow

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ArthurDelaporte/Yatube-Back/internal/user"
)

// Follow means User receives Author's posts in their follow feed.
type Follow struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    string    `gorm:"not null;uniqueIndex:idx_follows_pair;check:chk_follows_not_self,user_id <> author_id"`
	User      user.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AuthorID  string    `gorm:"not null;uniqueIndex:idx_follows_pair;index"`
	Author    user.User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}
