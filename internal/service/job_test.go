package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProNetwork/internal/model"
	"ProNetwork/internal/model/dto"
	"ProNetwork/pkg/errors"
)

func TestJobList(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	ctx := context.Background()

	all, err := f.svc.Jobs.List(ctx, dto.JobListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 5, all.Total)
	for _, j := range all.Jobs {
		assert.NotEmpty(t, j.ID)
		assert.NotEmpty(t, j.Slug)
		assert.NotEmpty(t, j.Posted)
	}

	filtered, err := f.svc.Jobs.List(ctx, dto.JobListQuery{Query: "frontend"})
	require.NoError(t, err)
	assert.Less(t, filtered.Total, all.Total)
	assert.Len(t, filtered.Jobs, filtered.Total)

	none, err := f.svc.Jobs.List(ctx, dto.JobListQuery{Location: "Atlantis"})
	require.NoError(t, err)
	assert.Zero(t, none.Total)
	assert.NotNil(t, none.Jobs)
}

func TestJobDetail(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	ctx := context.Background()

	all, _ := f.svc.Jobs.List(ctx, dto.JobListQuery{})
	d, err := f.svc.Jobs.Detail(ctx, all.Jobs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, all.Jobs[0].Title, d.Title)
	assert.NotEmpty(t, d.Responsibilities)

	_, err = f.svc.Jobs.Detail(ctx, "123")
	assert.ErrorIs(t, err, errors.JobNotFound)
	_, err = f.svc.Jobs.Detail(ctx, "not-a-number")
	assert.ErrorIs(t, err, errors.JobNotFound)
}

func TestApplyValidation(t *testing.T) {
	f := newFixture(t)
	uid := f.signIn(t)
	ctx := context.Background()
	all, _ := f.svc.Jobs.List(ctx, dto.JobListQuery{})
	jobID := all.Jobs[0].ID

	missing := []dto.ApplyRequest{
		{Email: "jane@example.com", ResumeFile: "cv.pdf"},
		{Name: "Jane", ResumeFile: "cv.pdf"},
		{Name: "Jane", Email: "jane@example.com"},
	}
	for _, req := range missing {
		_, err := f.svc.Jobs.Apply(ctx, uid, jobID, req)
		require.ErrorIs(t, err, errors.ValidationError)
		def, _ := errors.As(err)
		assert.Equal(t, "Please fill in all required fields", def.Message)
	}

	_, err := f.svc.Jobs.Apply(ctx, uid, "42", dto.ApplyRequest{Name: "Jane", Email: "jane@example.com", ResumeFile: "cv.pdf"})
	assert.ErrorIs(t, err, errors.JobNotFound)
}

func TestApplyCreatesApplication(t *testing.T) {
	f := newFixture(t)
	uid := f.signIn(t)
	ctx := context.Background()

	all, _ := f.svc.Jobs.List(ctx, dto.JobListQuery{})
	job := all.Jobs[0]

	res, err := f.svc.Jobs.Apply(ctx, uid, job.ID, dto.ApplyRequest{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "+15550100",
		ResumeFile:  "jane-doe-cv.pdf",
		CoverLetter: "Hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)

	d, _ := f.svc.Jobs.Detail(ctx, job.ID)
	assert.Equal(t, job.Applicants+1, d.Applicants)

	apps, err := f.svc.Applications.List(ctx, uid, "pending")
	require.NoError(t, err)
	var found bool
	for _, a := range apps.Applications {
		if a.ID == res.ApplicationID {
			found = true
			assert.Equal(t, job.ID, a.JobID)
			assert.Equal(t, "jane-doe-cv.pdf", a.Resume)
		}
	}
	assert.True(t, found)

	// 事件由进程内的 handler 处理，生成一条 job 通知
	notes, err := f.store.ListNotifications(ctx, uid)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, model.NotificationJob, notes[0].Type)
	assert.Equal(t, "Application Submitted", notes[0].Title)
}

func TestApplicationsListAndWithdraw(t *testing.T) {
	f := newFixture(t)
	uid := f.signIn(t)
	ctx := context.Background()

	all, err := f.svc.Applications.List(ctx, uid, "")
	require.NoError(t, err)
	assert.Equal(t, 5, all.Total)
	assert.Equal(t, 5, all.Counts["all"])
	assert.Equal(t, 1, all.Counts["interview"])
	assert.Equal(t, 0, all.Counts["withdrawn"])

	_, err = f.svc.Applications.List(ctx, uid, "archived")
	assert.ErrorIs(t, err, errors.ApplicationStatusInvalid)

	pending, err := f.svc.Applications.List(ctx, uid, "Pending")
	require.NoError(t, err)
	require.Len(t, pending.Applications, 1)
	id := pending.Applications[0].ID
	assert.Equal(t, "Pending Review", pending.Applications[0].StatusLabel)
	assert.True(t, pending.Applications[0].Withdrawable)

	_, err = f.svc.Applications.Withdraw(ctx, "john", id)
	assert.ErrorIs(t, err, errors.ApplicationNotFound)

	res, err := f.svc.Applications.Withdraw(ctx, uid, id)
	require.NoError(t, err)
	assert.Equal(t, "Your application has been withdrawn successfully.", res.Message)

	_, err = f.svc.Applications.Withdraw(ctx, uid, id)
	assert.ErrorIs(t, err, errors.ApplicationNotWithdrawable)

	rejected, _ := f.svc.Applications.List(ctx, uid, "rejected")
	require.Len(t, rejected.Applications, 1)
	assert.False(t, rejected.Applications[0].Withdrawable)
	_, err = f.svc.Applications.Withdraw(ctx, uid, rejected.Applications[0].ID)
	assert.ErrorIs(t, err, errors.ApplicationNotWithdrawable)

	after, _ := f.svc.Applications.List(ctx, uid, "all")
	assert.Equal(t, 1, after.Counts["withdrawn"])
	assert.Equal(t, 0, after.Counts["pending"])
}
