package models

import "time"

// ConsentRecord captures the digital signature agreement required before
// an AI review is generated. Written once, never mutated.
type ConsentRecord struct {
	BaseUUIDModel
	UserID    string    `gorm:"type:varchar(64);not null;index" json:"userId"`
	RunID     string    `gorm:"type:varchar(64);not null;index" json:"runId"`
	FileName  string    `gorm:"type:varchar(255);not null"      json:"fileName"`
	Signature string    `gorm:"type:varchar(255);not null"      json:"signature"`
	Agreed    bool      `gorm:"not null"                        json:"agreed"`
	SignedAt  time.Time `gorm:"not null"                        json:"signedAt"`
}
