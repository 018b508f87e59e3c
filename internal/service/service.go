package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ProNetwork/internal/backend"
	"ProNetwork/internal/cache"
	"ProNetwork/internal/queue"
	"ProNetwork/internal/repository"
	"ProNetwork/internal/wizard"
	"ProNetwork/pkg/logger"
	"ProNetwork/pkg/snowflake"
	"ProNetwork/pkg/token"
)

// Backend 是 service 层用到的后端 API
type Backend interface {
	wizard.Submitter
	Login(ctx context.Context, username, password string) (*backend.LoginResult, error)
	Profile(ctx context.Context, token string) (*backend.User, error)
}

var _ Backend = (*backend.Client)(nil)

// Deps 是构建所有 service 所需的依赖，由 cmd/server 按存储驱动组装
type Deps struct {
	Store     repository.Store
	Backend   Backend
	Publisher queue.Publisher
	Wizards   *cache.WizardStore
	Locker    *cache.Locker
	Tokens    *cache.TokenStore
	Profiles  *cache.ProtectedCache[backend.User]
	JWT       *token.Manager
	NextID    repository.IDFunc
	Now       func() time.Time

	// WizardLockTTL 是单次向导操作持锁的上限，需覆盖一次后端调用
	WizardLockTTL  time.Duration
	// BackendTimeout 是一次后端调用的最长耗时，WizardLockTTL 至少比它长 WizardLockMargin
	BackendTimeout time.Duration
	EmailHashSalt  string
}

// WizardLockMargin 是向导锁比后端超时多留的时间
const WizardLockMargin = 5 * time.Second

// Services 汇总所有 service，handler 只依赖它
type Services struct {
	Wizard        *WizardService
	Auth          *AuthService
	User          *UserService
	Jobs          *JobService
	Applications  *ApplicationService
	Notifications *NotificationService
	Network       *NetworkService
	Messages      *MessageService
}

func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.WizardLockTTL <= 0 {
		d.WizardLockTTL = 30 * time.Second
	}
	// 锁在后端调用结束前过期会让第二次提交拿到锁
	if minTTL := d.BackendTimeout + WizardLockMargin; d.BackendTimeout > 0 && d.WizardLockTTL < minTTL {
		logger.Logger.Warn("Wizard lock TTL shorter than backend timeout, raising it",
			zap.Duration("configured", d.WizardLockTTL),
			zap.Duration("backend_timeout", d.BackendTimeout),
			zap.Duration("effective", minTTL),
		)
		d.WizardLockTTL = minTTL
	}

	return &Services{
		Wizard:        &WizardService{deps: d},
		Auth:          &AuthService{deps: d},
		User:          &UserService{deps: d},
		Jobs:          &JobService{deps: d},
		Applications:  &ApplicationService{deps: d},
		Notifications: &NotificationService{deps: d},
		Network:       &NetworkService{deps: d},
		Messages:      &MessageService{deps: d},
	}
}

// publish 发布事件，失败只记日志，不影响已经完成的用户操作
func publish(ctx context.Context, p queue.Publisher, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		logger.Logger.Warn("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}

// formatID 对外统一用字符串 id，避免前端 JS 丢精度
func formatID(id int64) string {
	return snowflake.Format(id)
}

// parseID 解析路径中的 public_id，格式错误视为不存在
func parseID(s string) (int64, bool) {
	id, err := snowflake.Parse(s)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
