package user

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// IsAdmin reports whether the user carries the admin flag. Unknown users are not admins.
func (r *Repository) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var isAdmin bool
	err := r.db.WithContext(ctx).Model(&User{}).Select("is_admin").Where("id = ?", userID).Scan(&isAdmin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return isAdmin, nil
}
