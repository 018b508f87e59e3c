package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ProNetwork/internal/backend"
	"ProNetwork/internal/model"
	"ProNetwork/internal/model/dto"
	"ProNetwork/internal/wizard"
	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/logger"
	"ProNetwork/pkg/metrics"
)

const registeredMessage = "Your account has been created successfully. Please sign in."

// WizardService 把注册向导的状态机放到服务端
//
// 每次操作都在向导锁内完成：读出状态、交给 wizard.Controller 迁移、写回。
// 提交期间锁一直被持有，其它请求拿不到锁即视为 busy。
type WizardService struct {
	deps Deps
}

func lockKey(id string) string {
	return "wizard:" + id
}

func view(st wizard.State, busy bool) *dto.WizardView {
	return &dto.WizardView{
		WizardID:   st.ID,
		Step:       st.Step,
		TotalSteps: wizard.TotalSteps,
		Busy:       busy,
		Submitted:  st.Submitted,
		Draft:      st.Draft.Redacted(),
	}
}

// outcomeOf 把错误转换为指标里的 outcome
func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	if def, ok := errors.As(err); ok {
		return def.Code
	}
	return errors.Internal.Code
}

// withLock 在向导锁内执行 fn，锁被占用时返回 WIZARD_BUSY
func (s *WizardService) withLock(ctx context.Context, id string, fn func() error) error {
	unlock, ok, err := s.deps.Locker.TryLock(ctx, lockKey(id), s.deps.WizardLockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock wizard: %w", err)
	}
	if !ok {
		return errors.WizardBusy
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.Logger.Warn("Failed to release wizard lock", zap.String("wizard_id", id), zap.Error(err))
		}
	}()

	return fn()
}

// Create 创建停在第一步的新向导
func (s *WizardService) Create(ctx context.Context) (*dto.WizardView, error) {
	st := wizard.NewState(uuid.NewString(), s.deps.Now())
	if err := s.deps.Wizards.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("failed to save wizard: %w", err)
	}

	metrics.RecordWizardAction(ctx, "create", "ok")
	logger.Logger.Debug("Wizard created", zap.String("wizard_id", st.ID))
	return view(st, false), nil
}

// Get 返回向导当前状态
func (s *WizardService) Get(ctx context.Context, id string) (*dto.WizardView, error) {
	st, err := s.deps.Wizards.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	busy, err := s.deps.Locker.Held(ctx, lockKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to check wizard lock: %w", err)
	}
	return view(st, busy), nil
}

// mutate 在锁内加载状态、执行迁移、写回
func (s *WizardService) mutate(ctx context.Context, id, action string, step func(c *wizard.Controller) error) (*dto.WizardView, error) {
	var out *dto.WizardView
	err := s.withLock(ctx, id, func() error {
		st, err := s.deps.Wizards.Load(ctx, id)
		if err != nil {
			return err
		}

		c := wizard.Restore(st, s.deps.Backend)
		if err := step(c); err != nil {
			return err
		}

		next := c.State()
		if err := s.deps.Wizards.Save(ctx, next); err != nil {
			return fmt.Errorf("failed to save wizard: %w", err)
		}
		out = view(next, false)
		return nil
	})

	metrics.RecordWizardAction(ctx, action, outcomeOf(err))
	return out, err
}

// Set 批量修改字段；任一字段不合法时整体拒绝，不会写入一半
func (s *WizardService) Set(ctx context.Context, id string, fields map[string]string) (*dto.WizardView, error) {
	if len(fields) == 0 {
		return nil, errors.InvalidRequest.WithMessage("No fields to update")
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	return s.mutate(ctx, id, "set", func(c *wizard.Controller) error {
		probe := c.State().Draft
		for _, name := range names {
			if err := probe.Set(name, fields[name]); err != nil {
				return err
			}
		}
		for _, name := range names {
			if err := c.Set(name, fields[name]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *WizardService) Next(ctx context.Context, id string) (*dto.WizardView, error) {
	return s.mutate(ctx, id, "next", func(c *wizard.Controller) error { return c.Next() })
}

func (s *WizardService) Back(ctx context.Context, id string) (*dto.WizardView, error) {
	return s.mutate(ctx, id, "back", func(c *wizard.Controller) error { return c.Back() })
}

// Submit 在最后一步调用后端注册
//
// 成功后删除向导并发布 user.registered；失败时向导停留在最后一步，
// 后端给出的提示作为 SUBMISSION_FAILED 的 message 返回。
func (s *WizardService) Submit(ctx context.Context, id string) (*dto.SubmitResponse, error) {
	var out *dto.SubmitResponse
	err := s.withLock(ctx, id, func() error {
		st, err := s.deps.Wizards.Load(ctx, id)
		if err != nil {
			return err
		}

		done := metrics.TrackSubmission(ctx)
		defer done()

		c := wizard.Restore(st, s.deps.Backend)
		outcome, err := c.Submit(ctx)
		if err != nil {
			var subErr *backend.SubmissionError
			if stderrors.As(err, &subErr) {
				metrics.RecordRegistration(ctx, false)
				return errors.SubmissionFailed.WithMessage(subErr.Detail)
			}
			return err
		}
		metrics.RecordRegistration(ctx, true)

		final := c.State()
		draft := final.Draft
		if err := s.deps.Wizards.Delete(ctx, id); err != nil {
			// 删不掉就把终态写回，之后的操作都会得到 WIZARD_SUBMITTED
			logger.Logger.Warn("Failed to discard submitted wizard", zap.String("wizard_id", id), zap.Error(err))
			if err := s.deps.Wizards.Save(context.WithoutCancel(ctx), final); err != nil {
				logger.Logger.Error("Failed to mark wizard submitted", zap.String("wizard_id", id), zap.Error(err))
			}
		}
		publish(ctx, s.deps.Publisher, model.EventUserRegistered, model.UserRegisteredPayload{
			Username: draft.Username,
			Role:     string(draft.Role),
		})

		out = &dto.SubmitResponse{Message: registeredMessage, Redirect: outcome.Redirect}
		return nil
	})

	metrics.RecordWizardAction(ctx, "submit", outcomeOf(err))
	return out, err
}
