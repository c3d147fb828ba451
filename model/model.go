package model

import (
	"time"
)

type User struct {
	ID        int64 `gorm:"primaryKey"` // Telegram User ID
	CreatedAt time.Time
	UpdatedAt time.Time

	FirstName string
	LastName  string
	Username  string

	// Accreditation tier ordinal and its expiry.
	// A nil expiry means the tier never expires.
	Accred  int        `gorm:"default:0"`
	Expires *time.Time `gorm:"index"`

	Units []UnitMembership `gorm:"foreignKey:UserID"`
}

// UnitMembership links a user to a unit, with its own expiry.
type UnitMembership struct {
	ID      uint  `gorm:"primaryKey"`
	UserID  int64 `gorm:"index"`
	Unit    string
	Expires time.Time
}

// RelayRecord links a message to its copy in the counterpart chat.
// Records are append-only; lookups go both ways.
type RelayRecord struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	OriginalID int64 `gorm:"index"`
	CopyID     int64 `gorm:"index"`
	ChatID     int64
	ReplyToID  int64 // 0 when the message was not a reply
	Text       string
}

// CalendarEvent remembers an event id created in the external calendar
// so a later refresh can delete it.
type CalendarEvent struct {
	EventID   string `gorm:"primaryKey"`
	CreatedAt time.Time
}
