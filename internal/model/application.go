package model

import "time"

// ApplicationStatus 申请状态
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationReviewed  ApplicationStatus = "reviewed"
	ApplicationInterview ApplicationStatus = "interview"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationOffered   ApplicationStatus = "offered"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// ApplicationStatuses 按页面 tab 的顺序列出
var ApplicationStatuses = []ApplicationStatus{
	ApplicationPending,
	ApplicationReviewed,
	ApplicationInterview,
	ApplicationRejected,
	ApplicationOffered,
	ApplicationWithdrawn,
}

func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Label 是页面上显示的状态文案
func (s ApplicationStatus) Label() string {
	switch s {
	case ApplicationPending:
		return "Pending Review"
	case ApplicationReviewed:
		return "Under Review"
	case ApplicationInterview:
		return "Interview Stage"
	case ApplicationRejected:
		return "Not Selected"
	case ApplicationOffered:
		return "Offer Received"
	case ApplicationWithdrawn:
		return "Withdrawn"
	default:
		return "Unknown"
	}
}

// Withdrawable 已撤回或已被拒的申请不能再撤回
func (s ApplicationStatus) Withdrawable() bool {
	return s != ApplicationWithdrawn && s != ApplicationRejected
}

// Interview 面试安排，存储在 applications.interviews JSONB 中
type Interview struct {
	Date  string `json:"date" yaml:"date"`
	Type  string `json:"type" yaml:"type"` // phone, video, in-person
	With  string `json:"with" yaml:"with"`
	Notes string `json:"notes,omitempty" yaml:"notes"`
}

// Application 用户的职位申请
type Application struct {
	BaseModel
	AppliedAt      time.Time           `gorm:"type:timestamptz;not null" json:"applied_at"`
	Owner          string              `gorm:"type:varchar(150);not null;index:idx_applications_owner_status" json:"-"`
	Status         ApplicationStatus   `gorm:"type:varchar(16);not null;default:'pending';index:idx_applications_owner_status" json:"status"`
	JobTitle       string              `gorm:"type:varchar(128);not null" json:"job_title"`
	Company        string              `gorm:"type:varchar(128);not null" json:"company"`
	Location       string              `gorm:"type:varchar(128);not null;default:''" json:"location"`
	Type           string              `gorm:"type:varchar(32);not null;default:''" json:"type"`
	Salary         string              `gorm:"type:varchar(64);not null;default:''" json:"salary"`
	Notes          string              `gorm:"type:text;not null;default:''" json:"notes"`
	Resume         string              `gorm:"type:varchar(255);not null;default:''" json:"resume"`
	CoverLetter    string              `gorm:"type:text;not null;default:''" json:"cover_letter"`
	ApplicantName  string              `gorm:"type:varchar(128);not null;default:''" json:"applicant_name"`
	ApplicantEmail string              `gorm:"type:varchar(254);not null;default:''" json:"applicant_email"`
	ApplicantPhone string              `gorm:"type:varchar(32);not null;default:''" json:"applicant_phone"`
	Interviews     JSONList[Interview] `gorm:"type:jsonb;default:'[]'" json:"interviews"`
	PublicID       int64               `gorm:"uniqueIndex;not null" json:"public_id"`
	JobID          int64               `gorm:"not null;default:0" json:"job_id"` // 职位的 public_id，历史申请可能为 0
}

func (Application) TableName() string {
	return "applications"
}
