package dto

import "ProNetwork/internal/model"

// ========== User 相关 DTO ==========

// UserProfileData 后端返回的当前用户资料
type UserProfileData struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	Location     string `json:"location"`
	Bio          string `json:"bio"`
	MobileNumber string `json:"mobile_number"`
	Website      string `json:"website"`
	LinkedIn     string `json:"linkedin"`
	GitHub       string `json:"github"`
	Twitter      string `json:"twitter"`
	Skills       string `json:"skills"`
	Experience   string `json:"experience"`
	Initials     string `json:"initials"`
}

// DashboardCounts 仪表盘上的各项计数
type DashboardCounts struct {
	Applications        map[string]int `json:"applications"`
	UnreadNotifications int            `json:"unread_notifications"`
	PendingRequests     int            `json:"pending_requests"`
	Suggestions         int            `json:"suggestions"`
	UnreadConversations int            `json:"unread_conversations"`
	TotalApplications   int            `json:"total_applications"`
}

// DashboardData 仪表盘
type DashboardData struct {
	Greeting string          `json:"greeting"`
	Initials string          `json:"initials"`
	Profile  UserProfileData `json:"profile"`
	Counts   DashboardCounts `json:"counts"`
}

// ShowcaseData 个人主页
type ShowcaseData struct {
	Username       string                `json:"username"`
	Name           string                `json:"name"`
	Initials       string                `json:"initials"`
	Title          string                `json:"title"`
	Company        string                `json:"company"`
	Location       string                `json:"location"`
	About          string                `json:"about"`
	Experience     []model.Experience    `json:"experience"`
	Education      []model.Education     `json:"education"`
	Skills         []string              `json:"skills"`
	Certifications []model.Certification `json:"certifications"`
	Languages      []string              `json:"languages"`
	Projects       []model.Project       `json:"projects"`
	Connections    int                   `json:"connections"`
}
