package models

// ReportRecord is the metadata row written next to a stored report blob.
type ReportRecord struct {
	BaseUUIDModel
	UserID     string `gorm:"type:varchar(64);not null;index" json:"userId"`
	RunID      string `gorm:"type:varchar(64);not null;index" json:"runId"`
	FileName   string `gorm:"type:varchar(255);not null"      json:"fileName"`
	PdfPath    string `gorm:"type:varchar(512);not null"      json:"pdfPath"`
	PdfURL     string `gorm:"type:varchar(512)"               json:"pdfURL"`
	PlanYear   *int   `gorm:"type:int"                        json:"planYear"`
	TestResult string `gorm:"type:varchar(32)"                json:"testResult"`
	AIConsent  bool   `gorm:"not null;default:false"          json:"aiConsent"`
}
