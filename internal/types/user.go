package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const GuestEmailDomain = "guest.local"

type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Name        string    `gorm:"column:name" json:"name"`
	Password    string    `gorm:"column:password" json:"-"`
	AvatarColor string    `gorm:"column:avatar_color" json:"avatar_color"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string {
	return "user"
}

// IsGuest reports whether the account was provisioned anonymously.
// Guest identities follow the guest-<id>@guest.local convention and
// never gate persistence of chat exchanges.
func (u *User) IsGuest() bool {
	return strings.HasPrefix(u.Email, "guest-") && strings.HasSuffix(u.Email, "@"+GuestEmailDomain)
}
