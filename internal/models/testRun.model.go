package models

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// TestRun records one submission of a census file against one
// nondiscrimination test.
type TestRun struct {
	BaseUUIDModel
	UserID       string     `gorm:"type:varchar(64);not null;index" json:"userId"`
	TestKey      string     `gorm:"type:varchar(64);not null;index" json:"testKey"`
	PlanYear     *int       `gorm:"type:int"                        json:"planYear"`
	FileName     string     `gorm:"type:varchar(255);not null"      json:"fileName"`
	RowCount     int        `gorm:"type:int"                        json:"rowCount"`
	Status       string     `gorm:"type:varchar(32);not null"       json:"status"`
	Result       TestResult `gorm:"type:text"                       json:"result"`
	ErrorMessage *string    `gorm:"type:text"                       json:"errorMessage"`
}

type SubmitTestRequest struct {
	UserID   string
	TestKey  string
	PlanYear *int
	FileName string
	FileData []byte
}
