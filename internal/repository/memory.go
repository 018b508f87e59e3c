package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ProNetwork/internal/model"
)

// Memory 是进程内的 Store 实现，用于 memory 驱动和测试
type Memory struct {
	now           func() time.Time
	nextID        IDFunc
	jobs          map[int64]*model.Job
	applications  map[int64]*model.Application
	notifications map[int64]*model.Notification
	connections   map[int64]*model.Connection
	conversations map[int64]*model.Conversation
	messages      map[int64][]model.Message
	showcases     map[string]*model.Showcase
	seeded        map[string]bool
	mu            sync.RWMutex
	catalogSeeded bool
}

func NewMemory(nextID IDFunc) *Memory {
	return &Memory{
		now:           time.Now,
		nextID:        nextID,
		jobs:          make(map[int64]*model.Job),
		applications:  make(map[int64]*model.Application),
		notifications: make(map[int64]*model.Notification),
		connections:   make(map[int64]*model.Connection),
		conversations: make(map[int64]*model.Conversation),
		messages:      make(map[int64][]model.Message),
		showcases:     make(map[string]*model.Showcase),
		seeded:        make(map[string]bool),
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) SeedCatalog(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.catalogSeeded {
		return nil
	}

	ds, err := LoadDataset()
	if err != nil {
		return err
	}
	jobs, err := ds.BuildJobs(m.now(), m.nextID)
	if err != nil {
		return err
	}
	for i := range jobs {
		job := jobs[i]
		m.jobs[job.PublicID] = &job
	}
	m.catalogSeeded = true
	return nil
}

func (m *Memory) SeedOwner(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seeded[owner] {
		return nil
	}

	ds, err := LoadDataset()
	if err != nil {
		return err
	}
	recs, err := ds.BuildOwner(owner, m.now(), m.nextID)
	if err != nil {
		return err
	}

	for i := range recs.Applications {
		a := recs.Applications[i]
		m.applications[a.PublicID] = &a
	}
	for i := range recs.Notifications {
		n := recs.Notifications[i]
		m.notifications[n.PublicID] = &n
	}
	for i := range recs.Connections {
		c := recs.Connections[i]
		m.connections[c.PublicID] = &c
	}
	for i := range recs.Conversations {
		c := recs.Conversations[i]
		m.conversations[c.PublicID] = &c
	}
	for _, msg := range recs.Messages {
		m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], msg)
	}
	showcase := recs.Showcase
	m.showcases[owner] = &showcase
	m.seeded[owner] = true
	return nil
}

// ========== Jobs ==========

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// MatchJob 判断职位是否满足过滤条件，gorm 实现使用等价的 SQL
func MatchJob(j *model.Job, f JobFilter) bool {
	if q := strings.TrimSpace(f.Query); q != "" {
		hit := containsFold(j.Title, q) || containsFold(j.Company, q)
		for _, s := range j.Skills {
			hit = hit || containsFold(s, q)
		}
		if !hit {
			return false
		}
	}
	if loc := strings.TrimSpace(f.Location); loc != "" && !containsFold(j.Location, loc) {
		return false
	}
	return true
}

func (m *Memory) ListJobs(_ context.Context, filter JobFilter) ([]model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if MatchJob(j, filter) {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].PostedAt.After(out[k].PostedAt) })
	return out, nil
}

func (m *Memory) GetJob(_ context.Context, publicID int64) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[publicID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *Memory) IncrementApplicants(_ context.Context, publicID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[publicID]
	if !ok {
		return ErrNotFound
	}
	j.Applicants++
	j.UpdatedAt = m.now()
	return nil
}

// ========== Applications ==========

func (m *Memory) ListApplications(_ context.Context, owner string) ([]model.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Application
	for _, a := range m.applications {
		if a.Owner == owner {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].AppliedAt.After(out[k].AppliedAt) })
	return out, nil
}

func (m *Memory) GetApplication(_ context.Context, owner string, publicID int64) (*model.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.applications[publicID]
	if !ok || a.Owner != owner {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) CreateApplication(_ context.Context, app *model.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	app.CreatedAt, app.UpdatedAt = now, now
	cp := *app
	m.applications[app.PublicID] = &cp
	return nil
}

func (m *Memory) UpdateApplicationStatus(_ context.Context, owner string, publicID int64, status model.ApplicationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.applications[publicID]
	if !ok || a.Owner != owner {
		return ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = m.now()
	return nil
}

// ========== Notifications ==========

func (m *Memory) ListNotifications(_ context.Context, owner string) ([]model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Notification
	for _, n := range m.notifications {
		if n.Owner == owner {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (m *Memory) GetNotification(_ context.Context, owner string, publicID int64) (*model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.notifications[publicID]
	if !ok || n.Owner != owner {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *Memory) CreateNotification(_ context.Context, n *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n.CreatedAt, n.UpdatedAt = now, now
	cp := *n
	m.notifications[n.PublicID] = &cp
	return nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, owner string, publicID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[publicID]
	if !ok || n.Owner != owner {
		return ErrNotFound
	}
	n.Read = true
	n.UpdatedAt = m.now()
	return nil
}

func (m *Memory) MarkAllNotificationsRead(_ context.Context, owner string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var changed int64
	for _, n := range m.notifications {
		if n.Owner == owner && !n.Read {
			n.Read = true
			n.UpdatedAt = m.now()
			changed++
		}
	}
	return changed, nil
}

func (m *Memory) DeleteNotification(_ context.Context, owner string, publicID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[publicID]
	if !ok || n.Owner != owner {
		return ErrNotFound
	}
	delete(m.notifications, publicID)
	return nil
}

// ========== Network ==========

func (m *Memory) ListConnections(_ context.Context, owner string, kind model.ConnectionKind) ([]model.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Connection
	for _, c := range m.connections {
		if c.Owner == owner && c.Kind == kind {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].PublicID < out[k].PublicID })
	return out, nil
}

func (m *Memory) GetConnection(_ context.Context, owner string, publicID int64) (*model.Connection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.connections[publicID]
	if !ok || c.Owner != owner {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *Memory) UpdateConnection(_ context.Context, owner string, publicID int64, kind model.ConnectionKind, status model.ConnectionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.connections[publicID]
	if !ok || c.Owner != owner {
		return ErrNotFound
	}
	c.Kind = kind
	c.Status = status
	c.UpdatedAt = m.now()
	return nil
}

// ========== Messages ==========

func (m *Memory) ListConversations(_ context.Context, owner string) ([]model.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Conversation
	for _, c := range m.conversations {
		if c.Owner == owner {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].LastMessageAt.After(out[k].LastMessageAt) })
	return out, nil
}

func (m *Memory) GetConversation(_ context.Context, owner string, publicID int64) (*model.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.conversations[publicID]
	if !ok || c.Owner != owner {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *Memory) ListMessages(_ context.Context, conversationID int64) ([]model.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := append([]model.Message(nil), m.messages[conversationID]...)
	sort.SliceStable(out, func(i, k int) bool { return out[i].SentAt.Before(out[k].SentAt) })
	return out, nil
}

func (m *Memory) AppendMessage(_ context.Context, owner string, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[msg.ConversationID]
	if !ok || c.Owner != owner {
		return ErrNotFound
	}

	msg.CreatedAt, msg.UpdatedAt = msg.SentAt, msg.SentAt
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], *msg)
	c.LastMessage = msg.Content
	c.LastMessageAt = msg.SentAt
	c.UpdatedAt = msg.SentAt
	return nil
}

func (m *Memory) MarkConversationRead(_ context.Context, owner string, publicID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[publicID]
	if !ok || c.Owner != owner {
		return ErrNotFound
	}
	c.Unread = false
	return nil
}

// ========== Profile ==========

func (m *Memory) GetShowcase(_ context.Context, username string) (*model.Showcase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.showcases[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}
