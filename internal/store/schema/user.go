package schema

import (
	"time"
)

// User represents the users table. Passwords are stored as provided; the
// comparison strategy is pluggable at the accounts layer.
type User struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Name is the user's display name
	Name string `gorm:"column:name;not null;type:text"`
	// Email is the unique login identity
	Email string `gorm:"column:email;not null;type:text;uniqueIndex:idx_users_email"`
	// Password is the stored secret
	Password string `gorm:"column:password;not null;type:text"`
	// CreatedAt is the timestamp when this user registered
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
