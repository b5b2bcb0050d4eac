package models

import "time"

// User mirrors the profile held by the external identity provider. Rows are
// created and mutated only by its lifecycle webhooks; the primary key is the
// provider-issued identifier carried in bearer tokens.
type User struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	Email     string `gorm:"index"`
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
