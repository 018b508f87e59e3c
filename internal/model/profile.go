package model

// Experience 工作经历
type Experience struct {
	Title       string `json:"title" yaml:"title"`
	Company     string `json:"company" yaml:"company"`
	Location    string `json:"location" yaml:"location"`
	Duration    string `json:"duration" yaml:"duration"`
	Description string `json:"description" yaml:"description"`
}

// Education 教育经历
type Education struct {
	Degree   string `json:"degree" yaml:"degree"`
	School   string `json:"school" yaml:"school"`
	Duration string `json:"duration" yaml:"duration"`
}

// Certification 证书
type Certification struct {
	Name   string `json:"name" yaml:"name"`
	Issuer string `json:"issuer" yaml:"issuer"`
	Date   string `json:"date" yaml:"date"`
}

// Project 项目
type Project struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Showcase 个人主页上展示的资料
type Showcase struct {
	BaseModel
	Username       string                  `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Name           string                  `gorm:"type:varchar(128);not null" json:"name"`
	Title          string                  `gorm:"type:varchar(128);not null;default:''" json:"title"`
	Company        string                  `gorm:"type:varchar(128);not null;default:''" json:"company"`
	Location       string                  `gorm:"type:varchar(128);not null;default:''" json:"location"`
	About          string                  `gorm:"type:text;not null;default:''" json:"about"`
	Experience     JSONList[Experience]    `gorm:"type:jsonb;default:'[]'" json:"experience"`
	Education      JSONList[Education]     `gorm:"type:jsonb;default:'[]'" json:"education"`
	Skills         JSONList[string]        `gorm:"type:jsonb;default:'[]'" json:"skills"`
	Certifications JSONList[Certification] `gorm:"type:jsonb;default:'[]'" json:"certifications"`
	Languages      JSONList[string]        `gorm:"type:jsonb;default:'[]'" json:"languages"`
	Projects       JSONList[Project]       `gorm:"type:jsonb;default:'[]'" json:"projects"`
	Connections    int                     `gorm:"not null;default:0" json:"connections"`
}

func (Showcase) TableName() string {
	return "showcases"
}
