package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ProNetwork/internal/model"
	"ProNetwork/internal/model/dto"
	"ProNetwork/internal/repository"
	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/logger"
	"ProNetwork/utils"
)

const applicationWithdrawn = "Your application has been withdrawn successfully."

// ApplicationService 我的申请
type ApplicationService struct {
	deps Deps
}

func (s *ApplicationService) item(a *model.Application) dto.ApplicationItem {
	item := dto.ApplicationItem{
		ID:           formatID(a.PublicID),
		JobTitle:     a.JobTitle,
		Company:      a.Company,
		Location:     a.Location,
		Type:         a.Type,
		Salary:       a.Salary,
		Status:       string(a.Status),
		StatusLabel:  a.Status.Label(),
		AppliedAt:    a.AppliedAt.UTC().Format(time.RFC3339),
		Applied:      utils.HumanizeSince(a.AppliedAt, s.deps.Now()),
		Resume:       a.Resume,
		CoverLetter:  a.CoverLetter,
		Notes:        a.Notes,
		Interviews:   a.Interviews,
		Withdrawable: a.Status.Withdrawable(),
	}
	if item.Interviews == nil {
		item.Interviews = []model.Interview{}
	}
	if a.JobID != 0 {
		item.JobID = formatID(a.JobID)
	}
	return item
}

// List 按 tab 过滤申请，counts 总是基于全部申请
func (s *ApplicationService) List(ctx context.Context, uid, status string) (*dto.ApplicationListData, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		status = TabAll
	}
	if status != TabAll && !model.ApplicationStatus(status).Valid() {
		return nil, errors.ApplicationStatusInvalid
	}

	apps, err := s.deps.Store.ListApplications(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	counts := map[string]int{TabAll: len(apps)}
	for _, st := range model.ApplicationStatuses {
		counts[string(st)] = 0
	}

	out := make([]dto.ApplicationItem, 0, len(apps))
	for i := range apps {
		counts[string(apps[i].Status)]++
		if status == TabAll || string(apps[i].Status) == status {
			out = append(out, s.item(&apps[i]))
		}
	}

	return &dto.ApplicationListData{Applications: out, Counts: counts, Total: len(out)}, nil
}

// Withdraw 撤回申请，已撤回或已被拒的不能撤回
func (s *ApplicationService) Withdraw(ctx context.Context, uid, applicationID string) (*dto.MessageResponse, error) {
	id, ok := parseID(applicationID)
	if !ok {
		return nil, errors.ApplicationNotFound
	}

	app, err := s.deps.Store.GetApplication(ctx, uid, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.ApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	if !app.Status.Withdrawable() {
		return nil, errors.ApplicationNotWithdrawable
	}

	err = s.deps.Store.UpdateApplicationStatus(ctx, uid, id, model.ApplicationWithdrawn)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.ApplicationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw application: %w", err)
	}

	logger.Logger.Info("Application withdrawn", zap.String("uid", uid), zap.Int64("application_id", id))
	return &dto.MessageResponse{Message: applicationWithdrawn}, nil
}
