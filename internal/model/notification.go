package model

import "time"

// NotificationCategory classifies why a notification was produced.
type NotificationCategory string

const (
	NotifReservationCreated   NotificationCategory = "reservation_created"
	NotifReservationCancelled NotificationCategory = "reservation_cancelled"
	NotifReservationReminder  NotificationCategory = "reservation_reminder"
)

// Notification is the persisted record of a message to a user. Delivery
// itself (web push) is handled by the notification worker pool.
type Notification struct {
	ID          string               `gorm:"primaryKey;size:36"`
	RecipientID string               `gorm:"index;size:36;not null"`
	Title       string               `gorm:"size:128;not null"`
	Body        string               `gorm:"size:512;not null"`
	Category    NotificationCategory `gorm:"size:32;not null;index"`
	Read        bool                 `gorm:"not null;default:false"`
	CreatedAt   time.Time            `gorm:"not null;index"`
}
