package wizard

import (
	"context"
	"sync"
	"time"

	"ProNetwork/pkg/errors"
)

// SignInPath 是注册成功后前端应当跳转的页面
const SignInPath = "/auth/signin"

// Submitter 把完成的表单交给后端注册接口，返回 nil 表示注册成功
type Submitter interface {
	Submit(ctx context.Context, d Draft) error
}

// SubmitterFunc 让普通函数满足 Submitter
type SubmitterFunc func(ctx context.Context, d Draft) error

func (f SubmitterFunc) Submit(ctx context.Context, d Draft) error { return f(ctx, d) }

// State 是向导可持久化的部分，busy 只存在于进程内
type State struct {
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time `json:"updated_at" msgpack:"updated_at"`
	ID        string    `json:"id" msgpack:"id"`
	Draft     Draft     `json:"draft" msgpack:"draft"`
	Step      int       `json:"step" msgpack:"step"`
	Submitted bool      `json:"submitted" msgpack:"submitted"`
}

// NewState 返回停在第一步的空向导
func NewState(id string, now time.Time) State {
	return State{
		ID:        id,
		Step:      FirstStep,
		Draft:     NewDraft(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Outcome 是一次成功提交的结果
type Outcome struct {
	Redirect string
}

// Controller 驱动三步注册向导
//
// 所有状态迁移都在 mu 下完成；提交期间释放锁去调用 Submitter，
// 由 busy 挡住其它操作，提交结束后在 defer 中清掉 busy。
type Controller struct {
	submitter Submitter
	now       func() time.Time
	state     State
	mu        sync.Mutex
	busy      bool
}

// Restore 用已有状态构建控制器
func Restore(state State, submitter Submitter) *Controller {
	if state.Step < FirstStep || state.Step > LastStep {
		state.Step = FirstStep
	}
	return &Controller{state: state, submitter: submitter, now: time.Now}
}

// State 返回当前状态的快照
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// guard 必须在持有 mu 时调用
func (c *Controller) guard() error {
	if c.busy {
		return errors.WizardBusy
	}
	if c.state.Submitted {
		return errors.WizardSubmitted
	}
	return nil
}

func (c *Controller) touch() {
	c.state.UpdatedAt = c.now()
}

// Set 修改一个字段，不触发任何校验
func (c *Controller) Set(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return err
	}
	if err := c.state.Draft.Set(field, value); err != nil {
		return err
	}
	c.touch()
	return nil
}

// Next 校验当前步骤，通过后前进一步；最后一步只能提交
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return err
	}
	if c.state.Step >= LastStep {
		return errors.WizardStepInvalid.WithMessage("Already on the last step, submit instead")
	}
	if err := Validate(c.state.Draft, c.state.Step).Err(); err != nil {
		return err
	}

	c.state.Step++
	c.touch()
	return nil
}

// Back 无条件后退一步，第一步时报错且状态不变
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return err
	}
	if c.state.Step <= FirstStep {
		return errors.WizardStepInvalid.WithMessage("Already on the first step")
	}

	c.state.Step--
	c.touch()
	return nil
}

// Submit 在最后一步把表单交给 Submitter
//
// 成功后向导进入终态 submitted；失败时停留在最后一步并原样返回 Submitter 的错误。
// 提交不会重试，也不会因 ctx 之外的原因被取消。
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	draft, err := c.begin()
	if err != nil {
		return Outcome{}, err
	}
	defer c.finish()

	if err := c.submitter.Submit(ctx, draft); err != nil {
		return Outcome{}, err
	}

	c.mu.Lock()
	c.state.Submitted = true
	c.touch()
	c.mu.Unlock()

	return Outcome{Redirect: SignInPath}, nil
}

func (c *Controller) begin() (Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.guard(); err != nil {
		return Draft{}, err
	}
	if c.state.Step != LastStep {
		return Draft{}, errors.WizardStepInvalid.WithMessage("Submit is only available on the last step")
	}
	if err := Validate(c.state.Draft, c.state.Step).Err(); err != nil {
		return Draft{}, err
	}

	c.busy = true
	return c.state.Draft, nil
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}
