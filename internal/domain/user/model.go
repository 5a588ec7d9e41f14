package user

import (
	"github.com/vedawell/vedawell/internal/types"
)

// User is the minimal identity this core needs for ownership and
// existence checks.
type User struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Phone string `db:"phone" json:"phone,omitempty"`
	Name  string `db:"name" json:"name,omitempty"`
	types.BaseModel
}

func (u *User) TableName() string {
	return "users"
}
