package model

import "time"

// Laundromat is a site holding machines, owned by an operator. The
// machine -> laundromat -> owner chain is what operator authorization walks.
type Laundromat struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:128;not null"`
	Address   string `gorm:"size:256"`
	OwnerID   string `gorm:"index;size:36;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Machines []Machine `gorm:"foreignKey:LaundromatID"`
}
