package repository

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"ProNetwork/internal/model"
)

//go:embed seed.yaml
var seedYAML []byte

type seedJob struct {
	Title            string        `yaml:"title"`
	Company          string        `yaml:"company"`
	Location         string        `yaml:"location"`
	Type             string        `yaml:"type"`
	Salary           string        `yaml:"salary"`
	Experience       string        `yaml:"experience"`
	Description      string        `yaml:"description"`
	Responsibilities []string      `yaml:"responsibilities"`
	Requirements     []string      `yaml:"requirements"`
	Benefits         []string      `yaml:"benefits"`
	Skills           []string      `yaml:"skills"`
	PostedAgo        time.Duration `yaml:"posted_ago"`
	Applicants       int           `yaml:"applicants"`
}

type seedApplication struct {
	JobTitle    string            `yaml:"job_title"`
	Company     string            `yaml:"company"`
	Location    string            `yaml:"location"`
	Type        string            `yaml:"type"`
	Salary      string            `yaml:"salary"`
	Status      string            `yaml:"status"`
	Resume      string            `yaml:"resume"`
	CoverLetter string            `yaml:"cover_letter"`
	Notes       string            `yaml:"notes"`
	Interviews  []model.Interview `yaml:"interviews"`
	AppliedAgo  time.Duration     `yaml:"applied_ago"`
}

type seedNotification struct {
	Sender *struct {
		Name   string `yaml:"name"`
		Avatar string `yaml:"avatar"`
		Title  string `yaml:"title"`
	} `yaml:"sender"`
	Job *struct {
		Title   string `yaml:"title"`
		Company string `yaml:"company"`
	} `yaml:"job"`
	Type        string        `yaml:"type"`
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Ago         time.Duration `yaml:"ago"`
	Read        bool          `yaml:"read"`
	Actionable  bool          `yaml:"actionable"`
}

type seedPerson struct {
	Name   string `yaml:"name"`
	Title  string `yaml:"title"`
	Avatar string `yaml:"avatar"`
	Mutual int    `yaml:"mutual"`
}

type seedMessage struct {
	Sender  string        `yaml:"sender"`
	Content string        `yaml:"content"`
	Ago     time.Duration `yaml:"ago"`
	IsUser  bool          `yaml:"is_user"`
}

type seedConversation struct {
	Name     string        `yaml:"name"`
	Title    string        `yaml:"title"`
	Avatar   string        `yaml:"avatar"`
	Messages []seedMessage `yaml:"messages"`
	Unread   bool          `yaml:"unread"`
}

type seedShowcase struct {
	Name           string                `yaml:"name"`
	Title          string                `yaml:"title"`
	Company        string                `yaml:"company"`
	Location       string                `yaml:"location"`
	About          string                `yaml:"about"`
	Experience     []model.Experience    `yaml:"experience"`
	Education      []model.Education     `yaml:"education"`
	Skills         []string              `yaml:"skills"`
	Certifications []model.Certification `yaml:"certifications"`
	Languages      []string              `yaml:"languages"`
	Projects       []model.Project       `yaml:"projects"`
	Connections    int                   `yaml:"connections"`
}

// Dataset 是解析后的演示数据
type Dataset struct {
	Jobs  []seedJob `yaml:"jobs"`
	Owner struct {
		Applications  []seedApplication  `yaml:"applications"`
		Notifications []seedNotification `yaml:"notifications"`
		Requests      []seedPerson       `yaml:"requests"`
		Suggestions   []seedPerson       `yaml:"suggestions"`
		Conversations []seedConversation `yaml:"conversations"`
		Showcase      seedShowcase       `yaml:"showcase"`
	} `yaml:"owner"`
}

var (
	dataset     *Dataset
	datasetErr  error
	datasetOnce sync.Once
)

// LoadDataset 解析内嵌的 seed.yaml，只解析一次
func LoadDataset() (*Dataset, error) {
	datasetOnce.Do(func() {
		var ds Dataset
		if err := yaml.Unmarshal(seedYAML, &ds); err != nil {
			datasetErr = fmt.Errorf("failed to parse seed data: %w", err)
			return
		}
		dataset = &ds
	})
	return dataset, datasetErr
}

// IDFunc 生成 public_id
type IDFunc func() (int64, error)

// JobSlug 生成职位 slug，带上 id 保证唯一
func JobSlug(title, company string, id int64) string {
	return fmt.Sprintf("%s-%d", slug.Make(title+" "+company), id)
}

// BuildJobs 按 now 计算发布时间生成职位
func (ds *Dataset) BuildJobs(now time.Time, nextID IDFunc) ([]model.Job, error) {
	jobs := make([]model.Job, 0, len(ds.Jobs))
	for _, j := range ds.Jobs {
		id, err := nextID()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, model.Job{
			BaseModel:        model.BaseModel{CreatedAt: now, UpdatedAt: now},
			PublicID:         id,
			Slug:             JobSlug(j.Title, j.Company, id),
			Title:            j.Title,
			Company:          j.Company,
			Location:         j.Location,
			Type:             j.Type,
			Salary:           j.Salary,
			Experience:       j.Experience,
			Description:      j.Description,
			Responsibilities: j.Responsibilities,
			Requirements:     j.Requirements,
			Benefits:         j.Benefits,
			Skills:           j.Skills,
			Applicants:       j.Applicants,
			PostedAt:         now.Add(-j.PostedAgo),
		})
	}
	return jobs, nil
}

// OwnerRecords 是某个用户的一份演示数据
type OwnerRecords struct {
	Showcase      model.Showcase
	Applications  []model.Application
	Notifications []model.Notification
	Connections   []model.Connection
	Conversations []model.Conversation
	Messages      []model.Message
}

// BuildOwner 为 owner 生成一份独立的演示数据
func (ds *Dataset) BuildOwner(owner string, now time.Time, nextID IDFunc) (*OwnerRecords, error) {
	out := &OwnerRecords{}
	var err error
	id := func() int64 {
		if err != nil {
			return 0
		}
		var v int64
		v, err = nextID()
		return v
	}
	base := func(at time.Time) model.BaseModel {
		return model.BaseModel{CreatedAt: at, UpdatedAt: at}
	}

	for _, a := range ds.Owner.Applications {
		out.Applications = append(out.Applications, model.Application{
			BaseModel:   base(now.Add(-a.AppliedAgo)),
			PublicID:    id(),
			Owner:       owner,
			JobTitle:    a.JobTitle,
			Company:     a.Company,
			Location:    a.Location,
			Type:        a.Type,
			Salary:      a.Salary,
			Status:      model.ApplicationStatus(a.Status),
			Resume:      a.Resume,
			CoverLetter: a.CoverLetter,
			Notes:       a.Notes,
			Interviews:  a.Interviews,
			AppliedAt:   now.Add(-a.AppliedAgo),
		})
	}

	for _, n := range ds.Owner.Notifications {
		rec := model.Notification{
			BaseModel:   base(now.Add(-n.Ago)),
			PublicID:    id(),
			Owner:       owner,
			Type:        model.NotificationType(n.Type),
			Title:       n.Title,
			Description: n.Description,
			Read:        n.Read,
			Actionable:  n.Actionable,
		}
		if n.Sender != nil {
			rec.SenderName, rec.SenderAvatar, rec.SenderTitle = n.Sender.Name, n.Sender.Avatar, n.Sender.Title
		}
		if n.Job != nil {
			rec.JobTitle, rec.JobCompany = n.Job.Title, n.Job.Company
		}
		out.Notifications = append(out.Notifications, rec)
	}

	people := func(list []seedPerson, kind model.ConnectionKind) {
		for _, p := range list {
			out.Connections = append(out.Connections, model.Connection{
				BaseModel:         base(now),
				PublicID:          id(),
				Owner:             owner,
				Kind:              kind,
				Status:            model.ConnectionPending,
				Name:              p.Name,
				Title:             p.Title,
				AvatarInitials:    p.Avatar,
				MutualConnections: p.Mutual,
			})
		}
	}
	people(ds.Owner.Requests, model.ConnectionRequest)
	people(ds.Owner.Suggestions, model.ConnectionSuggestion)

	for _, c := range ds.Owner.Conversations {
		conv := model.Conversation{
			BaseModel: base(now),
			PublicID:  id(),
			Owner:     owner,
			Name:      c.Name,
			Title:     c.Title,
			Avatar:    c.Avatar,
			Unread:    c.Unread,
		}
		for _, m := range c.Messages {
			sentAt := now.Add(-m.Ago)
			out.Messages = append(out.Messages, model.Message{
				BaseModel:      base(sentAt),
				PublicID:       id(),
				ConversationID: conv.PublicID,
				Sender:         m.Sender,
				Content:        m.Content,
				IsUser:         m.IsUser,
				SentAt:         sentAt,
			})
			if sentAt.After(conv.LastMessageAt) {
				conv.LastMessageAt = sentAt
				conv.LastMessage = m.Content
			}
		}
		out.Conversations = append(out.Conversations, conv)
	}

	s := ds.Owner.Showcase
	out.Showcase = model.Showcase{
		BaseModel:      base(now),
		Username:       owner,
		Name:           s.Name,
		Title:          s.Title,
		Company:        s.Company,
		Location:       s.Location,
		About:          s.About,
		Experience:     s.Experience,
		Education:      s.Education,
		Skills:         s.Skills,
		Certifications: s.Certifications,
		Languages:      s.Languages,
		Projects:       s.Projects,
		Connections:    s.Connections,
	}

	if err != nil {
		return nil, fmt.Errorf("failed to allocate seed ids: %w", err)
	}
	return out, nil
}
