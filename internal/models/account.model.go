package models

// AccountInfo is the autosaved per-user profile block.
type AccountInfo struct {
	BaseUUIDModel
	UserID      string  `gorm:"type:varchar(64);not null;uniqueIndex" json:"userId"`
	CompanyName *string `gorm:"type:varchar(255)" json:"companyName"`
	ContactName *string `gorm:"type:varchar(255)" json:"contactName"`
	Email       *string `gorm:"type:varchar(255)" json:"email"`
	Phone       *string `gorm:"type:varchar(255)" json:"phone"`
	EIN         *string `gorm:"type:varchar(32)"  json:"ein"`
	PlanName    *string `gorm:"type:varchar(255)" json:"planName"`
}

type LoginRequest struct {
	Login string `json:"login"`
}

type User struct {
	BaseUUIDModel
	FirstName   string  `gorm:"type:varchar(255)"           json:"firstName"`
	LastName    string  `gorm:"type:varchar(255)"           json:"lastName"`
	DisplayName string  `gorm:"type:varchar(255)"           json:"displayName"`
	Email       *string `gorm:"type:varchar(255);index"     json:"email"`
	Login       string  `gorm:"type:varchar(255);uniqueIndex" json:"login"`
	IsAdmin     bool    `gorm:"not null;default:false"      json:"isAdmin"`
}
