package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProNetwork/internal/backend"
	"ProNetwork/internal/cache"
	"ProNetwork/internal/wizard"
	"ProNetwork/pkg/errors"
)

func step1Fields() map[string]string {
	return map[string]string{
		"username":        "janedoe",
		"email":           "jane@example.com",
		"password":        "supersecret",
		"confirmPassword": "supersecret",
	}
}

func step2Fields() map[string]string {
	return map[string]string{
		"first_name":    "Jane",
		"last_name":     "Doe",
		"mobile_number": "+15550100",
	}
}

// toLastStep 创建向导并走到第三步
func toLastStep(t *testing.T, f *fixture) string {
	t.Helper()
	ctx := context.Background()

	v, err := f.svc.Wizard.Create(ctx)
	require.NoError(t, err)
	id := v.WizardID

	_, err = f.svc.Wizard.Set(ctx, id, step1Fields())
	require.NoError(t, err)
	_, err = f.svc.Wizard.Next(ctx, id)
	require.NoError(t, err)
	_, err = f.svc.Wizard.Set(ctx, id, step2Fields())
	require.NoError(t, err)
	v, err = f.svc.Wizard.Next(ctx, id)
	require.NoError(t, err)
	require.Equal(t, wizard.LastStep, v.Step)
	return id
}

func TestWizardCreate(t *testing.T) {
	f := newFixture(t)

	v, err := f.svc.Wizard.Create(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, v.WizardID)
	assert.Equal(t, 1, v.Step)
	assert.Equal(t, 3, v.TotalSteps)
	assert.False(t, v.Busy)
	assert.Equal(t, wizard.RoleEmployee, v.Draft.Role)

	_, err = f.svc.Wizard.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, errors.WizardNotFound)
}

func TestWizardViewHidesPasswords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, _ := f.svc.Wizard.Create(ctx)
	v, err := f.svc.Wizard.Set(ctx, v.WizardID, step1Fields())
	require.NoError(t, err)
	assert.Equal(t, "janedoe", v.Draft.Username)
	assert.Empty(t, v.Draft.Password)
	assert.Empty(t, v.Draft.ConfirmPassword)
}

func TestWizardSetRejectsWholeBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v, _ := f.svc.Wizard.Create(ctx)

	_, err := f.svc.Wizard.Set(ctx, v.WizardID, map[string]string{"username": "janedoe", "nickname": "jd"})
	assert.ErrorIs(t, err, errors.UnknownField)

	_, err = f.svc.Wizard.Set(ctx, v.WizardID, map[string]string{"username": "janedoe", "role": "admin"})
	assert.ErrorIs(t, err, errors.InvalidRole)

	got, err := f.svc.Wizard.Get(ctx, v.WizardID)
	require.NoError(t, err)
	assert.Empty(t, got.Draft.Username)

	_, err = f.svc.Wizard.Set(ctx, v.WizardID, nil)
	assert.ErrorIs(t, err, errors.InvalidRequest)
}

func TestWizardGateErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   errors.Definition
	}{
		{"missing fields", map[string]string{"username": "janedoe"}, errors.FieldsMissing},
		{"password mismatch", map[string]string{
			"username": "janedoe", "email": "jane@example.com", "password": "supersecret", "confirmPassword": "supersecreT",
		}, errors.PasswordMismatch},
		{"password too short", map[string]string{
			"username": "janedoe", "email": "jane@example.com", "password": "short", "confirmPassword": "short",
		}, errors.PasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			v, _ := f.svc.Wizard.Create(ctx)

			_, err := f.svc.Wizard.Set(ctx, v.WizardID, tt.fields)
			require.NoError(t, err)

			_, err = f.svc.Wizard.Next(ctx, v.WizardID)
			require.ErrorIs(t, err, tt.want)
			def, _ := errors.As(err)
			assert.Equal(t, tt.want.Message, def.Message)

			got, _ := f.svc.Wizard.Get(ctx, v.WizardID)
			assert.Equal(t, 1, got.Step)
		})
	}
}

func TestWizardStepBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, _ := f.svc.Wizard.Create(ctx)
	_, err := f.svc.Wizard.Back(ctx, v.WizardID)
	assert.ErrorIs(t, err, errors.WizardStepInvalid)

	id := toLastStep(t, f)
	_, err = f.svc.Wizard.Next(ctx, id)
	assert.ErrorIs(t, err, errors.WizardStepInvalid)

	back, err := f.svc.Wizard.Back(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, back.Step)

	_, err = f.svc.Wizard.Submit(ctx, id)
	assert.ErrorIs(t, err, errors.WizardStepInvalid)
}

func TestWizardSubmitSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := toLastStep(t, f)

	_, err := f.svc.Wizard.Set(ctx, id, map[string]string{"role": "freelancer", "skills": "Go, SQL"})
	require.NoError(t, err)

	res, err := f.svc.Wizard.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/auth/signin", res.Redirect)

	require.Len(t, f.backend.submitted, 1)
	sent := f.backend.submitted[0]
	assert.Equal(t, "janedoe", sent.Username)
	assert.Equal(t, "supersecret", sent.Password)
	assert.Equal(t, wizard.RoleFreelancer, sent.Role)
	assert.Equal(t, "Go, SQL", sent.Skills)

	_, err = f.svc.Wizard.Get(ctx, id)
	assert.ErrorIs(t, err, errors.WizardNotFound)
}

func TestWizardSubmitFailureStaysOnLastStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := toLastStep(t, f)
	f.backend.submitErr = &backend.SubmissionError{Status: 400, Detail: "A user with that username already exists."}

	_, err := f.svc.Wizard.Submit(ctx, id)
	require.ErrorIs(t, err, errors.SubmissionFailed)
	def, _ := errors.As(err)
	assert.Equal(t, "A user with that username already exists.", def.Message)

	v, err := f.svc.Wizard.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, wizard.LastStep, v.Step)
	assert.False(t, v.Submitted)
	assert.False(t, v.Busy)

	// 失败后可以修改再提交
	f.backend.submitErr = nil
	_, err = f.svc.Wizard.Submit(ctx, id)
	assert.NoError(t, err)
}

func TestWizardBusyDuringSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := toLastStep(t, f)

	f.backend.started = make(chan struct{})
	f.backend.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Wizard.Submit(ctx, id)
		done <- err
	}()
	<-f.backend.started

	v, err := f.svc.Wizard.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.Busy)

	_, err = f.svc.Wizard.Set(ctx, id, map[string]string{"bio": "hello"})
	assert.ErrorIs(t, err, errors.WizardBusy)
	_, err = f.svc.Wizard.Back(ctx, id)
	assert.ErrorIs(t, err, errors.WizardBusy)
	_, err = f.svc.Wizard.Submit(ctx, id)
	assert.ErrorIs(t, err, errors.WizardBusy)

	close(f.backend.release)
	require.NoError(t, <-done)
	assert.Len(t, f.backend.submitted, 1)
}

func TestWizardLockOutlivesBackendTimeout(t *testing.T) {
	f := newFixture(t, func(d *Deps, _ cache.KV) {
		d.WizardLockTTL = 50 * time.Millisecond
		d.BackendTimeout = 200 * time.Millisecond
	})
	ctx := context.Background()
	id := toLastStep(t, f)

	f.backend.started = make(chan struct{})
	f.backend.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Wizard.Submit(ctx, id)
		done <- err
	}()
	<-f.backend.started

	// 已经超过配置的 50ms，锁仍然有效
	time.Sleep(150 * time.Millisecond)
	_, err := f.svc.Wizard.Submit(ctx, id)
	assert.ErrorIs(t, err, errors.WizardBusy)

	close(f.backend.release)
	require.NoError(t, <-done)
	assert.Len(t, f.backend.submitted, 1)
}

func TestNewRaisesShortWizardLockTTL(t *testing.T) {
	svc := New(Deps{WizardLockTTL: time.Second, BackendTimeout: 10 * time.Second})
	assert.Equal(t, 10*time.Second+WizardLockMargin, svc.Wizard.deps.WizardLockTTL)

	svc = New(Deps{WizardLockTTL: time.Minute, BackendTimeout: 10 * time.Second})
	assert.Equal(t, time.Minute, svc.Wizard.deps.WizardLockTTL)
}

// undeletableKV 的删除总是失败
type undeletableKV struct {
	cache.KV
}

func (undeletableKV) Del(context.Context, ...string) error {
	return stderrors.New("redis: connection reset")
}

func TestWizardSubmittedStaysFinalWhenDiscardFails(t *testing.T) {
	f := newFixture(t, func(d *Deps, kv cache.KV) {
		d.Wizards = cache.NewWizardStore(undeletableKV{kv}, testKey, time.Hour)
	})
	ctx := context.Background()
	id := toLastStep(t, f)

	_, err := f.svc.Wizard.Submit(ctx, id)
	require.NoError(t, err)

	v, err := f.svc.Wizard.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.Submitted)

	_, err = f.svc.Wizard.Submit(ctx, id)
	assert.ErrorIs(t, err, errors.WizardSubmitted)
	_, err = f.svc.Wizard.Set(ctx, id, map[string]string{"bio": "again"})
	assert.ErrorIs(t, err, errors.WizardSubmitted)
	assert.Len(t, f.backend.submitted, 1)
}
