package model

import "time"

// Job 职位，所有用户共享
type Job struct {
	BaseModel
	PostedAt         time.Time        `gorm:"type:timestamptz;not null;index" json:"posted_at"`
	Slug             string           `gorm:"type:varchar(160);not null;index" json:"slug"`
	Title            string           `gorm:"type:varchar(128);not null" json:"title"`
	Company          string           `gorm:"type:varchar(128);not null" json:"company"`
	Location         string           `gorm:"type:varchar(128);not null;default:''" json:"location"`
	Type             string           `gorm:"type:varchar(32);not null;default:''" json:"type"`
	Salary           string           `gorm:"type:varchar(64);not null;default:''" json:"salary"`
	Experience       string           `gorm:"type:varchar(32);not null;default:''" json:"experience"`
	Description      string           `gorm:"type:text;not null;default:''" json:"description"`
	Responsibilities JSONList[string] `gorm:"type:jsonb;default:'[]'" json:"responsibilities"`
	Requirements     JSONList[string] `gorm:"type:jsonb;default:'[]'" json:"requirements"`
	Benefits         JSONList[string] `gorm:"type:jsonb;default:'[]'" json:"benefits"`
	Skills           JSONList[string] `gorm:"type:jsonb;default:'[]'" json:"skills"`
	PublicID         int64            `gorm:"uniqueIndex;not null" json:"public_id"`
	Applicants       int              `gorm:"not null;default:0" json:"applicants"`
}

func (Job) TableName() string {
	return "jobs"
}
