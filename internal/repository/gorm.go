package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"ProNetwork/internal/model"
)

// Gorm 基于 PostgreSQL 的 Store 实现
type Gorm struct {
	db     *gorm.DB
	now    func() time.Time
	nextID IDFunc
}

func NewGorm(db *gorm.DB, nextID IDFunc) *Gorm {
	return &Gorm{db: db, now: time.Now, nextID: nextID}
}

var _ Store = (*Gorm)(nil)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// affected 把 0 行更新视为记录不存在
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

func (g *Gorm) SeedCatalog(ctx context.Context) error {
	var count int64
	if err := g.db.WithContext(ctx).Model(&model.Job{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	ds, err := LoadDataset()
	if err != nil {
		return err
	}
	jobs, err := ds.BuildJobs(g.now(), g.nextID)
	if err != nil {
		return err
	}
	return g.db.WithContext(ctx).Create(&jobs).Error
}

func (g *Gorm) SeedOwner(ctx context.Context, owner string) error {
	var count int64
	if err := g.db.WithContext(ctx).Model(&model.Showcase{}).
		Where("username = ?", owner).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	ds, err := LoadDataset()
	if err != nil {
		return err
	}
	recs, err := ds.BuildOwner(owner, g.now(), g.nextID)
	if err != nil {
		return err
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// showcase 的唯一索引保证并发登录时只有一个事务成功
		if err := tx.Create(&recs.Showcase).Error; err != nil {
			return fmt.Errorf("failed to seed showcase: %w", err)
		}
		batches := []any{&recs.Applications, &recs.Notifications, &recs.Connections, &recs.Conversations, &recs.Messages}
		for _, b := range batches {
			if err := tx.CreateInBatches(b, 100).Error; err != nil {
				return fmt.Errorf("failed to seed owner data: %w", err)
			}
		}
		return nil
	})
}

// ========== Jobs ==========

func (g *Gorm) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	q := g.db.WithContext(ctx).Model(&model.Job{})
	if strings.TrimSpace(filter.Query) != "" {
		p := likePattern(filter.Query)
		q = q.Where("title ILIKE ? OR company ILIKE ? OR skills::text ILIKE ?", p, p, p)
	}
	if strings.TrimSpace(filter.Location) != "" {
		q = q.Where("location ILIKE ?", likePattern(filter.Location))
	}

	var jobs []model.Job
	if err := q.Order("posted_at DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (g *Gorm) GetJob(ctx context.Context, publicID int64) (*model.Job, error) {
	var job model.Job
	if err := g.db.WithContext(ctx).Where("public_id = ?", publicID).First(&job).Error; err != nil {
		return nil, notFound(err)
	}
	return &job, nil
}

func (g *Gorm) IncrementApplicants(ctx context.Context, publicID int64) error {
	return affected(g.db.WithContext(ctx).Model(&model.Job{}).
		Where("public_id = ?", publicID).
		UpdateColumn("applicants", gorm.Expr("applicants + 1")))
}

// ========== Applications ==========

func (g *Gorm) ListApplications(ctx context.Context, owner string) ([]model.Application, error) {
	var apps []model.Application
	err := g.db.WithContext(ctx).Where("owner = ?", owner).Order("applied_at DESC").Find(&apps).Error
	return apps, err
}

func (g *Gorm) GetApplication(ctx context.Context, owner string, publicID int64) (*model.Application, error) {
	var app model.Application
	err := g.db.WithContext(ctx).Where("owner = ? AND public_id = ?", owner, publicID).First(&app).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &app, nil
}

func (g *Gorm) CreateApplication(ctx context.Context, app *model.Application) error {
	return g.db.WithContext(ctx).Create(app).Error
}

func (g *Gorm) UpdateApplicationStatus(ctx context.Context, owner string, publicID int64, status model.ApplicationStatus) error {
	return affected(g.db.WithContext(ctx).Model(&model.Application{}).
		Where("owner = ? AND public_id = ?", owner, publicID).
		Updates(map[string]any{"status": status, "updated_at": g.now()}))
}

// ========== Notifications ==========

func (g *Gorm) ListNotifications(ctx context.Context, owner string) ([]model.Notification, error) {
	var list []model.Notification
	err := g.db.WithContext(ctx).Where("owner = ?", owner).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (g *Gorm) GetNotification(ctx context.Context, owner string, publicID int64) (*model.Notification, error) {
	var n model.Notification
	err := g.db.WithContext(ctx).Where("owner = ? AND public_id = ?", owner, publicID).First(&n).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

func (g *Gorm) CreateNotification(ctx context.Context, n *model.Notification) error {
	return g.db.WithContext(ctx).Create(n).Error
}

func (g *Gorm) MarkNotificationRead(ctx context.Context, owner string, publicID int64) error {
	return affected(g.db.WithContext(ctx).Model(&model.Notification{}).
		Where("owner = ? AND public_id = ?", owner, publicID).
		Updates(map[string]any{"read": true, "updated_at": g.now()}))
}

func (g *Gorm) MarkAllNotificationsRead(ctx context.Context, owner string) (int64, error) {
	res := g.db.WithContext(ctx).Model(&model.Notification{}).
		Where("owner = ? AND read = ?", owner, false).
		Updates(map[string]any{"read": true, "updated_at": g.now()})
	return res.RowsAffected, res.Error
}

func (g *Gorm) DeleteNotification(ctx context.Context, owner string, publicID int64) error {
	return affected(g.db.WithContext(ctx).
		Where("owner = ? AND public_id = ?", owner, publicID).
		Delete(&model.Notification{}))
}

// ========== Network ==========

func (g *Gorm) ListConnections(ctx context.Context, owner string, kind model.ConnectionKind) ([]model.Connection, error) {
	var list []model.Connection
	err := g.db.WithContext(ctx).Where("owner = ? AND kind = ?", owner, kind).Order("public_id ASC").Find(&list).Error
	return list, err
}

func (g *Gorm) GetConnection(ctx context.Context, owner string, publicID int64) (*model.Connection, error) {
	var c model.Connection
	err := g.db.WithContext(ctx).Where("owner = ? AND public_id = ?", owner, publicID).First(&c).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (g *Gorm) UpdateConnection(ctx context.Context, owner string, publicID int64, kind model.ConnectionKind, status model.ConnectionStatus) error {
	return affected(g.db.WithContext(ctx).Model(&model.Connection{}).
		Where("owner = ? AND public_id = ?", owner, publicID).
		Updates(map[string]any{"kind": kind, "status": status, "updated_at": g.now()}))
}

// ========== Messages ==========

func (g *Gorm) ListConversations(ctx context.Context, owner string) ([]model.Conversation, error) {
	var list []model.Conversation
	err := g.db.WithContext(ctx).Where("owner = ?", owner).Order("last_message_at DESC").Find(&list).Error
	return list, err
}

func (g *Gorm) GetConversation(ctx context.Context, owner string, publicID int64) (*model.Conversation, error) {
	var c model.Conversation
	err := g.db.WithContext(ctx).Where("owner = ? AND public_id = ?", owner, publicID).First(&c).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (g *Gorm) ListMessages(ctx context.Context, conversationID int64) ([]model.Message, error) {
	var list []model.Message
	err := g.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Order("sent_at ASC, id ASC").Find(&list).Error
	return list, err
}

func (g *Gorm) AppendMessage(ctx context.Context, owner string, msg *model.Message) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Conversation{}).
			Where("owner = ? AND public_id = ?", owner, msg.ConversationID).
			Updates(map[string]any{
				"last_message":    msg.Content,
				"last_message_at": msg.SentAt,
				"updated_at":      msg.SentAt,
			})
		if err := affected(res); err != nil {
			return err
		}
		return tx.Create(msg).Error
	})
}

func (g *Gorm) MarkConversationRead(ctx context.Context, owner string, publicID int64) error {
	return affected(g.db.WithContext(ctx).Model(&model.Conversation{}).
		Where("owner = ? AND public_id = ?", owner, publicID).
		UpdateColumn("unread", false))
}

// ========== Profile ==========

func (g *Gorm) GetShowcase(ctx context.Context, username string) (*model.Showcase, error) {
	var s model.Showcase
	if err := g.db.WithContext(ctx).Where("username = ?", username).First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}
