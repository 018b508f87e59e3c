package dto

import "ProNetwork/internal/model"

// ========== Jobs 与 Applications DTO ==========

// JobListQuery 职位搜索参数
type JobListQuery struct {
	Query    string `query:"q"`
	Location string `query:"location"`
}

// JobSummary 列表中的职位
type JobSummary struct {
	ID         string   `json:"id"`
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Company    string   `json:"company"`
	Location   string   `json:"location"`
	Type       string   `json:"type"`
	Salary     string   `json:"salary"`
	Posted     string   `json:"posted"`
	Skills     []string `json:"skills"`
	Applicants int      `json:"applicants"`
}

// JobListData 职位列表
type JobListData struct {
	Jobs  []JobSummary `json:"jobs"`
	Total int          `json:"total"`
}

// JobDetail 职位详情
type JobDetail struct {
	JobSummary
	Experience       string   `json:"experience"`
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
	Requirements     []string `json:"requirements"`
	Benefits         []string `json:"benefits"`
}

// ApplyRequest 投递申请
type ApplyRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ResumeFile  string `json:"resume_file"`
	CoverLetter string `json:"cover_letter"`
}

// ApplyResponse 投递结果
type ApplyResponse struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// ApplicationListQuery 申请列表参数
type ApplicationListQuery struct {
	Status string `query:"status"`
}

// ApplicationItem 申请记录
type ApplicationItem struct {
	ID           string            `json:"id"`
	JobID        string            `json:"job_id,omitempty"`
	JobTitle     string            `json:"job_title"`
	Company      string            `json:"company"`
	Location     string            `json:"location"`
	Type         string            `json:"type"`
	Salary       string            `json:"salary"`
	Status       string            `json:"status"`
	StatusLabel  string            `json:"status_label"`
	AppliedAt    string            `json:"applied_at"`
	Applied      string            `json:"applied"`
	Resume       string            `json:"resume"`
	CoverLetter  string            `json:"cover_letter"`
	Notes        string            `json:"notes"`
	Interviews   []model.Interview `json:"interviews"`
	Withdrawable bool              `json:"withdrawable"`
}

// ApplicationListData 申请列表及各状态计数
type ApplicationListData struct {
	Applications []ApplicationItem `json:"applications"`
	Counts       map[string]int    `json:"counts"`
	Total        int               `json:"total"`
}
