package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ProNetwork/internal/backend"
	"ProNetwork/internal/cache"
	"ProNetwork/internal/model/dto"
	"ProNetwork/internal/queue"
	"ProNetwork/internal/repository"
	"ProNetwork/internal/wizard"
	"ProNetwork/pkg/snowflake"
	"ProNetwork/pkg/token"
)

func TestMain(m *testing.M) {
	if err := snowflake.Init(1, 1); err != nil {
		panic(err)
	}
	goleak.VerifyTestMain(m)
}

var testKey = []byte("0123456789abcdef0123456789abcdef")

// fakeBackend 记录调用并按配置返回结果
type fakeBackend struct {
	loginRes   *backend.LoginResult
	loginErr   error
	profile    *backend.User
	profileErr error
	submitErr  error

	// 非 nil 时 Submit 先通知 started 再等待 release
	started chan struct{}
	release chan struct{}

	mu           sync.Mutex
	submitted    []wizard.Draft
	profileCalls atomic.Int32
}

func (f *fakeBackend) Submit(_ context.Context, d wizard.Draft) error {
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, d)
	return nil
}

func (f *fakeBackend) Login(_ context.Context, _, _ string) (*backend.LoginResult, error) {
	return f.loginRes, f.loginErr
}

func (f *fakeBackend) Profile(_ context.Context, _ string) (*backend.User, error) {
	f.profileCalls.Add(1)
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	u := *f.profile
	return &u, nil
}

type fixture struct {
	svc     *Services
	backend *fakeBackend
	store   *repository.Memory
	tokens  *cache.TokenStore
}

// fixtureOption 在 New 之前调整依赖，kv 是 fixture 共用的存储
type fixtureOption func(d *Deps, kv cache.KV)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	kv := cache.NewMemoryKV()
	store := repository.NewMemory(snowflake.NextID)
	handler := queue.NewHandler(store, cache.NewMessageMarks(kv), snowflake.NextID)
	jwt, err := token.NewManager("test-secret", 30*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	fb := &fakeBackend{
		loginRes: &backend.LoginResult{
			Token: "backend-token",
			User:  &backend.User{Username: "jane", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", Role: "employee"},
		},
		profile: &backend.User{Username: "jane", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
	}
	tokens := cache.NewTokenStore(kv, testKey, 24*time.Hour)

	deps := Deps{
		Store:         store,
		Backend:       fb,
		Publisher:     queue.NewLocalPublisher(handler),
		Wizards:       cache.NewWizardStore(kv, testKey, time.Hour),
		Locker:        cache.NewLocker(kv),
		Tokens:        tokens,
		Profiles:      cache.NewProtectedCache[backend.User](kv, "profile", time.Minute),
		JWT:           jwt,
		NextID:        snowflake.NextID,
		WizardLockTTL: 5 * time.Second,
		EmailHashSalt: "salt",
	}
	for _, opt := range opts {
		opt(&deps, kv)
	}
	svc := New(deps)

	return &fixture{svc: svc, backend: fb, store: store, tokens: tokens}
}

// signIn 以 jane 登录，写入演示数据
func (f *fixture) signIn(t *testing.T) string {
	t.Helper()
	_, err := f.svc.Auth.Login(context.Background(), dto.LoginRequest{Username: "jane", Password: "secret123"})
	require.NoError(t, err)
	return "jane"
}
