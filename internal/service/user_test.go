package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProNetwork/internal/backend"
	"ProNetwork/pkg/errors"
)

func TestProfileIsCached(t *testing.T) {
	f := newFixture(t)
	uid := f.signIn(t)
	ctx := context.Background()

	_, err := f.svc.User.Profile(ctx, uid)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := f.svc.User.Profile(ctx, uid)
			if assert.NoError(t, err) {
				assert.Equal(t, "JD", p.Initials)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, f.backend.profileCalls.Load())
}

func TestProfileWithoutSignIn(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.User.Profile(context.Background(), "jane")
	assert.ErrorIs(t, err, errors.Unauthorized)
	assert.Zero(t, f.backend.profileCalls.Load())
}

func TestProfileRejectedTokenRevokes(t *testing.T) {
	f := newFixture(t)
	uid := f.signIn(t)
	ctx := context.Background()
	f.backend.profileErr = backend.ErrUnauthorized

	_, err := f.svc.User.Profile(ctx, uid)
	assert.ErrorIs(t, err, errors.Unauthorized)

	_, err = f.tokens.BackendToken(ctx, uid)
	assert.Error(t, err)
}

func TestProfileBackendFailure(t *testing.T) {
	f := newFixture(t)
	uid := f.signIn(t)
	f.backend.profileErr = &backend.Error{Status: 500, Message: "Failed to fetch user data"}

	_, err := f.svc.User.Profile(context.Background(), uid)
	require.ErrorIs(t, err, errors.BackendUnavailable)
	def, _ := errors.As(err)
	assert.Equal(t, "Failed to fetch user data", def.Message)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	uid := f.signIn(t)

	d, err := f.svc.User.Dashboard(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, "Welcome back, Jane!", d.Greeting)
	assert.Equal(t, "JD", d.Initials)
	assert.Equal(t, 5, d.Counts.TotalApplications)
	assert.Equal(t, 1, d.Counts.Applications["pending"])
	assert.Equal(t, 0, d.Counts.Applications["withdrawn"])
	assert.Equal(t, 2, d.Counts.UnreadNotifications)
	assert.Equal(t, 3, d.Counts.PendingRequests)
	assert.Equal(t, 6, d.Counts.Suggestions)
	assert.Equal(t, 1, d.Counts.UnreadConversations)
}

func TestDashboardFallbacks(t *testing.T) {
	f := newFixture(t)
	f.backend.profile = &backend.User{Username: "jane"}
	uid := f.signIn(t)

	d, err := f.svc.User.Dashboard(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, "Welcome back, User!", d.Greeting)
	assert.Equal(t, "U", d.Initials)
}

func TestShowcase(t *testing.T) {
	f := newFixture(t)
	uid := f.signIn(t)

	sc, err := f.svc.User.Showcase(context.Background(), uid)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", sc.Name)
	assert.Equal(t, "JD", sc.Initials)
	assert.Equal(t, 732, sc.Connections)
	assert.NotEmpty(t, sc.Experience)

	_, err = f.svc.User.Showcase(context.Background(), "nobody")
	assert.ErrorIs(t, err, errors.ProfileNotFound)
}

func TestSplitName(t *testing.T) {
	first, last := splitName("  Mary Ann  Smith ")
	assert.Equal(t, "Mary", first)
	assert.Equal(t, "Smith", last)

	first, last = splitName("Cher")
	assert.Equal(t, "Cher", first)
	assert.Empty(t, last)
}
