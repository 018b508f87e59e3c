package wizard

import (
	"context"
	stderrors "errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ProNetwork/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingSubmitter struct {
	err   error
	got   []Draft
	mu    sync.Mutex
	calls int
}

func (r *recordingSubmitter) Submit(_ context.Context, d Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.got = append(r.got, d)
	return r.err
}

func newController(s Submitter) *Controller {
	return Restore(NewState("wiz-1", time.Now()), s)
}

func fillStepOne(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.Set(FieldUsername, "janedoe"))
	require.NoError(t, c.Set(FieldEmail, "jane@example.com"))
	require.NoError(t, c.Set(FieldPassword, "supersecret"))
	require.NoError(t, c.Set(FieldConfirmPassword, "supersecret"))
}

func fillStepTwo(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.Set(FieldFirstName, "Jane"))
	require.NoError(t, c.Set(FieldLastName, "Doe"))
	require.NoError(t, c.Set(FieldMobileNumber, "+1 555 0100"))
}

func advanceToLastStep(t *testing.T, c *Controller) {
	t.Helper()
	fillStepOne(t, c)
	require.NoError(t, c.Next())
	fillStepTwo(t, c)
	require.NoError(t, c.Next())
	require.Equal(t, LastStep, c.State().Step)
}

func TestHappyPathSubmitsOnce(t *testing.T) {
	sub := &recordingSubmitter{}
	c := newController(sub)
	advanceToLastStep(t, c)

	out, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SignInPath, out.Redirect)

	st := c.State()
	assert.True(t, st.Submitted)
	assert.False(t, c.Busy())
	require.Equal(t, 1, sub.calls)
	assert.Equal(t, "janedoe", sub.got[0].Username)
	assert.Equal(t, RoleEmployee, sub.got[0].Role)

	// 终态之后所有操作都被拒绝
	assert.ErrorIs(t, c.Set(FieldBio, "x"), errors.WizardSubmitted)
	assert.ErrorIs(t, c.Back(), errors.WizardSubmitted)
	_, err = c.Submit(context.Background())
	assert.ErrorIs(t, err, errors.WizardSubmitted)
	assert.Equal(t, 1, sub.calls)
}

func TestPasswordMismatchStaysOnStepOne(t *testing.T) {
	c := newController(&recordingSubmitter{})
	fillStepOne(t, c)
	require.NoError(t, c.Set(FieldConfirmPassword, "different1"))

	err := c.Next()
	assert.ErrorIs(t, err, errors.PasswordMismatch)
	assert.Equal(t, "Passwords do not match", err.Error())
	assert.Equal(t, 1, c.State().Step)
}

func TestStepTwoRequiresNames(t *testing.T) {
	c := newController(&recordingSubmitter{})
	fillStepOne(t, c)
	require.NoError(t, c.Next())

	assert.ErrorIs(t, c.Next(), errors.FieldsMissing)
	assert.Equal(t, 2, c.State().Step)
}

func TestBackNeverValidatesAndStopsAtOne(t *testing.T) {
	c := newController(&recordingSubmitter{})
	advanceToLastStep(t, c)

	require.NoError(t, c.Set(FieldFirstName, ""))
	require.NoError(t, c.Back())
	require.NoError(t, c.Back())
	assert.Equal(t, 1, c.State().Step)

	assert.ErrorIs(t, c.Back(), errors.WizardStepInvalid)
	assert.Equal(t, 1, c.State().Step)
}

func TestNextOnLastStepIsRejected(t *testing.T) {
	c := newController(&recordingSubmitter{})
	advanceToLastStep(t, c)

	assert.ErrorIs(t, c.Next(), errors.WizardStepInvalid)
	assert.Equal(t, LastStep, c.State().Step)
}

func TestSubmitOnlyOnLastStep(t *testing.T) {
	sub := &recordingSubmitter{}
	c := newController(sub)
	fillStepOne(t, c)

	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, errors.WizardStepInvalid)
	assert.Zero(t, sub.calls)
}

func TestSubmissionFailureKeepsStep(t *testing.T) {
	sub := &recordingSubmitter{err: stderrors.New("username taken")}
	c := newController(sub)
	advanceToLastStep(t, c)

	_, err := c.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "username taken", err.Error())

	st := c.State()
	assert.Equal(t, LastStep, st.Step)
	assert.False(t, st.Submitted)
	assert.False(t, c.Busy())

	// 失败后可以再次提交，由用户触发而不是自动重试
	sub.err = nil
	_, err = c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sub.calls)
}

func TestBusyRejectsEverythingWhileSubmitting(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	sub := SubmitterFunc(func(context.Context, Draft) error {
		close(started)
		<-release
		return nil
	})

	c := newController(sub)
	advanceToLastStep(t, c)

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		done <- err
	}()

	<-started
	assert.True(t, c.Busy())
	assert.ErrorIs(t, c.Set(FieldBio, "hello"), errors.WizardBusy)
	assert.ErrorIs(t, c.Next(), errors.WizardBusy)
	assert.ErrorIs(t, c.Back(), errors.WizardBusy)
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, errors.WizardBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.Busy())
	assert.True(t, c.State().Submitted)
}

func TestBusyClearedWhenSubmitterPanics(t *testing.T) {
	c := newController(SubmitterFunc(func(context.Context, Draft) error {
		panic("boom")
	}))
	advanceToLastStep(t, c)

	assert.Panics(t, func() { _, _ = c.Submit(context.Background()) })
	assert.False(t, c.Busy())
	assert.Equal(t, LastStep, c.State().Step)
}

func TestRestoreClampsStep(t *testing.T) {
	st := NewState("wiz", time.Now())
	st.Step = 7
	assert.Equal(t, FirstStep, Restore(st, nil).State().Step)
}

// 随机操作序列下 step 始终在 [1,3] 内，且只有全部校验通过才能前进
func TestRandomOperationsKeepStepInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	values := []string{"", "janedoe", "jane@example.com", "supersecret", "short", "Jane"}

	for run := 0; run < 200; run++ {
		fail := rng.Intn(2) == 0
		c := newController(SubmitterFunc(func(context.Context, Draft) error {
			if fail {
				return stderrors.New("rejected")
			}
			return nil
		}))

		for op := 0; op < 40; op++ {
			before := c.State()
			switch rng.Intn(4) {
			case 0:
				field := Fields[rng.Intn(len(Fields))]
				if field == FieldRole {
					continue
				}
				_ = c.Set(field, values[rng.Intn(len(values))])
			case 1:
				err := c.Next()
				if err == nil {
					assert.True(t, Validate(before.Draft, before.Step).OK)
					assert.Equal(t, before.Step+1, c.State().Step)
				}
			case 2:
				_ = c.Back()
			case 3:
				_, err := c.Submit(context.Background())
				if err == nil {
					assert.Equal(t, LastStep, before.Step)
				}
			}

			st := c.State()
			require.GreaterOrEqual(t, st.Step, FirstStep)
			require.LessOrEqual(t, st.Step, LastStep)
			require.False(t, c.Busy())
			if fail {
				require.False(t, st.Submitted)
			}
		}
	}
}
