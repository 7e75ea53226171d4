package model

import "time"

// Role identifies what a user is allowed to do with reservations.
type Role string

const (
	RoleCustomer      Role = "CUSTOMER"
	RoleOperator      Role = "OPERATOR"
	RoleAdministrator Role = "ADMIN"
)

// User is a minimal account record. Authentication lives outside this
// service; the core only needs existence checks and a notification recipient.
type User struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:128;not null"`
	Role      Role   `gorm:"size:16;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
