package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ProNetwork/internal/backend"
	"ProNetwork/internal/cache"
	"ProNetwork/internal/model"
	"ProNetwork/internal/model/dto"
	"ProNetwork/internal/repository"
	"ProNetwork/pkg/errors"
	"ProNetwork/pkg/logger"
	"ProNetwork/utils"
)

const signInRequired = "Please sign in to access the dashboard"

// UserService 当前用户资料、仪表盘和个人主页
type UserService struct {
	deps Deps
}

// backendUser 用保存的后端 token 拉取资料，结果进 ProtectedCache，并发请求只回源一次
func (s *UserService) backendUser(ctx context.Context, uid string) (*backend.User, error) {
	u, err := s.deps.Profiles.GetOrLoad(ctx, uid, func(ctx context.Context) (*backend.User, error) {
		tok, err := s.deps.Tokens.BackendToken(ctx, uid)
		if err != nil {
			return nil, err
		}
		return s.deps.Backend.Profile(ctx, tok)
	})

	var be *backend.Error
	switch {
	case err == nil:
	case stderrors.Is(err, cache.ErrMiss):
		return nil, errors.Unauthorized.WithMessage(signInRequired)
	case stderrors.Is(err, backend.ErrUnauthorized):
		// 后端已经不认这个 token，让前端重新登录
		if rerr := s.deps.Tokens.Revoke(ctx, uid); rerr != nil {
			logger.Logger.Warn("Failed to revoke rejected token", zap.String("uid", uid), zap.Error(rerr))
		}
		return nil, errors.Unauthorized.WithMessage(signInRequired)
	case stderrors.As(err, &be):
		return nil, errors.BackendUnavailable.WithMessage(be.Message)
	default:
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if u == nil {
		return nil, errors.ProfileNotFound
	}
	return u, nil
}

func profileData(u *backend.User) dto.UserProfileData {
	return dto.UserProfileData{
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         u.Role,
		Location:     u.Location,
		Bio:          u.Bio,
		MobileNumber: u.MobileNumber,
		Website:      u.Website,
		LinkedIn:     u.LinkedIn,
		GitHub:       u.GitHub,
		Twitter:      u.Twitter,
		Skills:       u.Skills,
		Experience:   u.Experience,
		Initials:     utils.Initials(u.FirstName, u.LastName, "U"),
	}
}

// Profile 返回后端上的当前用户资料
func (s *UserService) Profile(ctx context.Context, uid string) (*dto.UserProfileData, error) {
	u, err := s.backendUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	data := profileData(u)
	return &data, nil
}

// Dashboard 并发加载资料和各项计数
func (s *UserService) Dashboard(ctx context.Context, uid string) (*dto.DashboardData, error) {
	var (
		user          *backend.User
		notifications []model.Notification
		applications  []model.Application
		requests      []model.Connection
		suggestions   []model.Connection
		conversations []model.Conversation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		user, err = s.backendUser(gctx, uid)
		return err
	})
	g.Go(func() (err error) {
		notifications, err = s.deps.Store.ListNotifications(gctx, uid)
		return err
	})
	g.Go(func() (err error) {
		applications, err = s.deps.Store.ListApplications(gctx, uid)
		return err
	})
	g.Go(func() (err error) {
		requests, err = s.deps.Store.ListConnections(gctx, uid, model.ConnectionRequest)
		return err
	})
	g.Go(func() (err error) {
		suggestions, err = s.deps.Store.ListConnections(gctx, uid, model.ConnectionSuggestion)
		return err
	})
	g.Go(func() (err error) {
		conversations, err = s.deps.Store.ListConversations(gctx, uid)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := dto.DashboardCounts{
		Applications:      make(map[string]int, len(model.ApplicationStatuses)),
		TotalApplications: len(applications),
		Suggestions:       len(suggestions),
	}
	for _, st := range model.ApplicationStatuses {
		counts.Applications[string(st)] = 0
	}
	for _, a := range applications {
		counts.Applications[string(a.Status)]++
	}
	for _, n := range notifications {
		if !n.Read {
			counts.UnreadNotifications++
		}
	}
	for _, r := range requests {
		if r.Status == model.ConnectionPending {
			counts.PendingRequests++
		}
	}
	for _, c := range conversations {
		if c.Unread {
			counts.UnreadConversations++
		}
	}

	profile := profileData(user)
	name := user.FirstName
	if name == "" {
		name = "User"
	}

	return &dto.DashboardData{
		Greeting: "Welcome back, " + name + "!",
		Initials: profile.Initials,
		Profile:  profile,
		Counts:   counts,
	}, nil
}

// Showcase 返回个人主页
func (s *UserService) Showcase(ctx context.Context, username string) (*dto.ShowcaseData, error) {
	sc, err := s.deps.Store.GetShowcase(ctx, username)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.ProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get showcase: %w", err)
	}

	first, last := splitName(sc.Name)
	return &dto.ShowcaseData{
		Username:       sc.Username,
		Name:           sc.Name,
		Initials:       utils.Initials(first, last, "U"),
		Title:          sc.Title,
		Company:        sc.Company,
		Location:       sc.Location,
		About:          sc.About,
		Experience:     sc.Experience,
		Education:      sc.Education,
		Skills:         sc.Skills,
		Certifications: sc.Certifications,
		Languages:      sc.Languages,
		Projects:       sc.Projects,
		Connections:    sc.Connections,
	}, nil
}

// splitName 取第一个词和最后一个词
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}
