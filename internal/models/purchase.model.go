package models

import "time"

// PurchasedTest tracks a one-shot entitlement to run a test. Once used,
// a purchase is both used=true and unlocked=false and never reverts.
type PurchasedTest struct {
	BaseUUIDModel
	UserID      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_test" json:"userId"`
	TestID      string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_test" json:"testId"`
	Unlocked    bool      `gorm:"not null;default:false" json:"unlocked"`
	Used        bool      `gorm:"not null;default:false" json:"used"`
	PurchasedAt time.Time `gorm:"not null"               json:"purchasedAt"`
}

type CartItem struct {
	TestID string `json:"testId"`
	Name   string `json:"name"`
}

type CheckoutRequest struct {
	TestItems []CartItem `json:"testItems"`
}
