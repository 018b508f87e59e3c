package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ProNetwork/internal/model"
	"ProNetwork/internal/model/dto"
	"ProNetwork/internal/queue"
	"ProNetwork/internal/repository"
	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/logger"
	"ProNetwork/utils"
)

const applicationSubmitted = "Your application has been successfully submitted"

// JobService 职位搜索、详情和投递
type JobService struct {
	deps Deps
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *JobService) summary(j *model.Job) dto.JobSummary {
	return dto.JobSummary{
		ID:         formatID(j.PublicID),
		Slug:       j.Slug,
		Title:      j.Title,
		Company:    j.Company,
		Location:   j.Location,
		Type:       j.Type,
		Salary:     j.Salary,
		Posted:     utils.HumanizeSince(j.PostedAt, s.deps.Now()),
		Skills:     nonNil(j.Skills),
		Applicants: j.Applicants,
	}
}

// List 按关键字和地点过滤，发布时间倒序
func (s *JobService) List(ctx context.Context, q dto.JobListQuery) (*dto.JobListData, error) {
	jobs, err := s.deps.Store.ListJobs(ctx, repository.JobFilter{Query: q.Query, Location: q.Location})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	out := make([]dto.JobSummary, 0, len(jobs))
	for i := range jobs {
		out = append(out, s.summary(&jobs[i]))
	}
	return &dto.JobListData{Jobs: out, Total: len(out)}, nil
}

func (s *JobService) get(ctx context.Context, jobID string) (*model.Job, error) {
	id, ok := parseID(jobID)
	if !ok {
		return nil, errors.JobNotFound
	}
	job, err := s.deps.Store.GetJob(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.JobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (s *JobService) Detail(ctx context.Context, jobID string) (*dto.JobDetail, error) {
	job, err := s.get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &dto.JobDetail{
		JobSummary:       s.summary(job),
		Experience:       job.Experience,
		Description:      job.Description,
		Responsibilities: nonNil(job.Responsibilities),
		Requirements:     nonNil(job.Requirements),
		Benefits:         nonNil(job.Benefits),
	}, nil
}

// Apply 投递职位，姓名、邮箱和简历必填
func (s *JobService) Apply(ctx context.Context, uid, jobID string, req dto.ApplyRequest) (*dto.ApplyResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	resume := strings.TrimSpace(req.ResumeFile)
	if name == "" || email == "" || resume == "" {
		return nil, errors.ValidationError
	}
	if !utils.ValidateEmail(email) {
		return nil, errors.EmailInvalid
	}

	job, err := s.get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	id, err := s.deps.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate application id: %w", err)
	}

	now := s.deps.Now()
	app := &model.Application{
		PublicID:       id,
		Owner:          uid,
		JobID:          job.PublicID,
		JobTitle:       job.Title,
		Company:        job.Company,
		Location:       job.Location,
		Type:           job.Type,
		Salary:         job.Salary,
		Status:         model.ApplicationPending,
		Resume:         resume,
		CoverLetter:    req.CoverLetter,
		ApplicantName:  name,
		ApplicantEmail: email,
		ApplicantPhone: strings.TrimSpace(req.Phone),
		AppliedAt:      now,
	}
	if err := s.deps.Store.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	if err := s.deps.Store.IncrementApplicants(ctx, job.PublicID); err != nil {
		logger.Logger.Warn("Failed to increment applicants",
			zap.Int64("job_id", job.PublicID),
			zap.Error(err),
		)
	}

	if s.deps.Publisher != nil {
		if err := queue.PublishApplicationSubmitted(ctx, s.deps.Publisher, app); err != nil {
			logger.Logger.Warn("Failed to publish application event",
				zap.Int64("application_id", app.PublicID),
				zap.Error(err),
			)
		}
	}

	logger.Logger.Info("Application submitted",
		zap.String("uid", uid),
		zap.Int64("job_id", job.PublicID),
		zap.Int64("application_id", app.PublicID),
	)

	return &dto.ApplyResponse{
		ApplicationID: formatID(app.PublicID),
		Status:        string(app.Status),
		Message:       applicationSubmitted,
	}, nil
}
