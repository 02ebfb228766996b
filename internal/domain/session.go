package domain

import "time"

// Session binds a user to a device for a bounded time window. Expiry is
// detected lazily at validation time; there is no background sweep.
type Session struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"size:36;not null;index" json:"user_id"`
	IP           string    `gorm:"size:64" json:"ip"`
	UserAgent    string    `gorm:"size:512" json:"user_agent"`
	DeviceType   string    `gorm:"size:32" json:"device_type"`
	Browser      string    `gorm:"size:32" json:"browser"`
	OS           string    `gorm:"size:32" json:"os"`
	Location     string    `gorm:"size:255" json:"location"`
	IsOnline     bool      `gorm:"not null;default:true" json:"is_online"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
