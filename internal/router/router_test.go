package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProNetwork/internal/backend"
	"ProNetwork/internal/cache"
	"ProNetwork/internal/handler"
	"ProNetwork/internal/middleware"
	"ProNetwork/internal/queue"
	"ProNetwork/internal/repository"
	"ProNetwork/internal/service"
	"ProNetwork/pkg/snowflake"
	"ProNetwork/pkg/token"
)

func TestMain(m *testing.M) {
	if err := snowflake.Init(1, 2); err != nil {
		panic(err)
	}
	m.Run()
}

var testKey = []byte("0123456789abcdef0123456789abcdef")

// fakeAPI 模拟后端用户接口
type fakeAPI struct {
	mu         sync.Mutex
	registered []map[string]any
	rejectWith string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch r.URL.Path {
	case backend.RegisterPath:
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.rejectWith != "" {
			writeJSON(http.StatusBadRequest, map[string]any{"detail": f.rejectWith})
			return
		}
		f.registered = append(f.registered, body)
		writeJSON(http.StatusCreated, map[string]any{"id": len(f.registered)})

	case backend.LoginPath:
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret123" {
			writeJSON(http.StatusBadRequest, map[string]any{"error": "Invalid credentials"})
			return
		}
		writeJSON(http.StatusOK, map[string]any{
			"token": "tok-" + body["username"],
			"user":  map[string]any{"username": body["username"], "first_name": "Jane", "last_name": "Doe"},
		})

	case backend.ProfilePath:
		if r.Header.Get("Authorization") != "Token tok-jane" {
			writeJSON(http.StatusUnauthorized, map[string]any{"detail": "Invalid token."})
			return
		}
		writeJSON(http.StatusOK, map[string]any{
			"username": "jane", "first_name": "Jane", "last_name": "Doe", "email": "jane@example.com",
		})

	default:
		http.NotFound(w, r)
	}
}

type testServer struct {
	h   *server.Hertz
	api *fakeAPI
}

func newTestServer(t *testing.T, limiter cache.Limiter) *testServer {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := backend.New(backend.Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	kv := cache.NewMemoryKV()
	store := repository.NewMemory(snowflake.NextID)
	jwt, err := token.NewManager("router-secret", 30*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	svc := service.New(service.Deps{
		Store:     store,
		Backend:   client,
		Publisher: queue.NewLocalPublisher(queue.NewHandler(store, cache.NewMessageMarks(kv), snowflake.NextID)),
		Wizards:   cache.NewWizardStore(kv, testKey, time.Hour),
		Locker:    cache.NewLocker(kv),
		Tokens:    cache.NewTokenStore(kv, testKey, 24*time.Hour),
		Profiles:  cache.NewProtectedCache[backend.User](kv, "profile", time.Minute),
		JWT:       jwt,
		NextID:    snowflake.NextID,
	})

	auth, err := middleware.NewAuth(jwt)
	require.NoError(t, err)

	h := server.New()
	Register(h, handler.New(svc), Options{
		Auth:          auth,
		Limiter:       limiter,
		SessionSecret: "session-secret",
	})
	return &testServer{h: h, api: api}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type result struct {
	status  int
	body    envelope
	cookies []string
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...ut.Header) result {
	t.Helper()

	var reqBody *ut.Body
	if body != nil {
		var raw []byte
		if s, ok := body.(string); ok {
			raw = []byte(s)
		} else {
			var err error
			raw, err = json.Marshal(body)
			require.NoError(t, err)
		}
		reqBody = &ut.Body{Body: bytes.NewReader(raw), Len: len(raw)}
		headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	}

	w := ut.PerformRequest(ts.h.Engine, method, path, reqBody, headers...)
	resp := w.Result()

	out := result{status: resp.StatusCode()}
	if b := resp.Body(); len(b) > 0 {
		require.NoError(t, json.Unmarshal(b, &out.body), string(b))
	}
	resp.Header.VisitAllCookie(func(_, value []byte) {
		out.cookies = append(out.cookies, strings.SplitN(string(value), ";", 2)[0])
	})
	return out
}

func bearer(tok string) ut.Header {
	return ut.Header{Key: "Authorization", Value: "Bearer " + tok}
}

func decode[T any](t *testing.T, r result) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(r.body.Data, &v))
	return v
}

type wizardView struct {
	WizardID   string         `json:"wizard_id"`
	Draft      map[string]any `json:"draft"`
	Step       int            `json:"step"`
	TotalSteps int            `json:"total_steps"`
	Busy       bool           `json:"busy"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	r := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, r.status)
}

func TestSignupFlow(t *testing.T) {
	ts := newTestServer(t, nil)

	r := ts.do(t, http.MethodPost, "/v1/auth/signup", nil)
	require.Equal(t, http.StatusCreated, r.status)
	view := decode[wizardView](t, r)
	assert.Equal(t, 1, view.Step)
	assert.Equal(t, 3, view.TotalSteps)
	assert.Equal(t, "employee", view.Draft["role"])
	base := "/v1/auth/signup/" + view.WizardID

	r = ts.do(t, http.MethodPost, base+"/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, r.status)
	assert.Equal(t, "FIELDS_MISSING", r.body.Error.Code)

	r = ts.do(t, http.MethodPatch, base, map[string]string{
		"username":        "janedoe",
		"email":           "jane@example.com",
		"password":        "supersecret",
		"confirmPassword": "supersecreT",
	})
	require.Equal(t, http.StatusOK, r.status)
	assert.Empty(t, decode[wizardView](t, r).Draft["password"])

	r = ts.do(t, http.MethodPost, base+"/next", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, r.status)
	assert.Equal(t, "PASSWORD_MISMATCH", r.body.Error.Code)

	ts.do(t, http.MethodPatch, base, map[string]string{"confirmPassword": "supersecret"})
	r = ts.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, 2, decode[wizardView](t, r).Step)

	ts.do(t, http.MethodPatch, base, map[string]string{
		"first_name":    "Jane",
		"last_name":     "Doe",
		"mobile_number": "+1 555 0100",
		"role":          "freelancer",
	})
	r = ts.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, 3, decode[wizardView](t, r).Step)

	r = ts.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, r.status)
	out := decode[map[string]string](t, r)
	assert.Equal(t, "/auth/signin", out["redirect"])

	require.Len(t, ts.api.registered, 1)
	assert.Equal(t, "janedoe", ts.api.registered[0]["username"])
	assert.Equal(t, "freelancer", ts.api.registered[0]["role"])
	assert.NotContains(t, ts.api.registered[0], "confirmPassword")

	r = ts.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, "WIZARD_NOT_FOUND", r.body.Error.Code)
}

func TestSignupPatchValidation(t *testing.T) {
	ts := newTestServer(t, nil)
	view := decode[wizardView](t, ts.do(t, http.MethodPost, "/v1/auth/signup", nil))
	base := "/v1/auth/signup/" + view.WizardID

	r := ts.do(t, http.MethodPatch, base, `{"username": 42}`)
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "INVALID_REQUEST", r.body.Error.Code)

	r = ts.do(t, http.MethodPatch, base, `not json`)
	assert.Equal(t, http.StatusBadRequest, r.status)

	r = ts.do(t, http.MethodPatch, base, map[string]string{"username": "jane", "nickname": "jd"})
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "UNKNOWN_FIELD", r.body.Error.Code)

	// 整批被拒，username 没有写入
	r = ts.do(t, http.MethodGet, base, nil)
	assert.Empty(t, decode[wizardView](t, r).Draft["username"])

	r = ts.do(t, http.MethodPatch, base, map[string]string{"role": "admin"})
	assert.Equal(t, "INVALID_ROLE", r.body.Error.Code)

	r = ts.do(t, http.MethodPost, base+"/back", nil)
	assert.Equal(t, http.StatusConflict, r.status)
	assert.Equal(t, "WIZARD_STEP_INVALID", r.body.Error.Code)
}

func TestSignupResumeFromSession(t *testing.T) {
	ts := newTestServer(t, nil)

	r := ts.do(t, http.MethodPost, "/v1/auth/signup", nil)
	require.NotEmpty(t, r.cookies)
	id := decode[wizardView](t, r).WizardID

	r = ts.do(t, http.MethodGet, "/v1/auth/signup", nil, ut.Header{Key: "Cookie", Value: r.cookies[0]})
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, id, decode[wizardView](t, r).WizardID)

	r = ts.do(t, http.MethodGet, "/v1/auth/signup", nil)
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestSignupSubmissionFailure(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.api.rejectWith = "A user with that username already exists."

	view := decode[wizardView](t, ts.do(t, http.MethodPost, "/v1/auth/signup", nil))
	base := "/v1/auth/signup/" + view.WizardID
	ts.do(t, http.MethodPatch, base, map[string]string{
		"username": "janedoe", "email": "jane@example.com",
		"password": "supersecret", "confirmPassword": "supersecret",
		"first_name": "Jane", "last_name": "Doe", "mobile_number": "+1 555 0100",
	})
	ts.do(t, http.MethodPost, base+"/next", nil)
	ts.do(t, http.MethodPost, base+"/next", nil)

	r := ts.do(t, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusBadGateway, r.status)
	assert.Equal(t, "SUBMISSION_FAILED", r.body.Error.Code)
	assert.Equal(t, "A user with that username already exists.", r.body.Error.Message)

	// 失败后仍停留在最后一步，可以重试
	r = ts.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, r.status)
	v := decode[wizardView](t, r)
	assert.Equal(t, 3, v.Step)
	assert.False(t, v.Busy)
}

type loginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Redirect     string `json:"redirect"`
}

func login(t *testing.T, ts *testServer) loginData {
	t.Helper()
	r := ts.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "jane", "password": "secret123"})
	require.Equal(t, http.StatusOK, r.status)
	return decode[loginData](t, r)
}

func TestLoginAndProtectedRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	r := ts.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "jane"})
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "Please fill in all fields", r.body.Error.Message)

	r = ts.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "jane", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "Invalid credentials", r.body.Error.Message)

	r = ts.do(t, http.MethodGet, "/v1/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)

	tok := login(t, ts)
	assert.Equal(t, "/dashboard", tok.Redirect)

	r = ts.do(t, http.MethodGet, "/v1/dashboard", nil, bearer(tok.AccessToken))
	require.Equal(t, http.StatusOK, r.status)
	dash := decode[map[string]any](t, r)
	assert.Equal(t, "Welcome back, Jane!", dash["greeting"])

	r = ts.do(t, http.MethodGet, "/v1/users/me", nil, bearer(tok.AccessToken))
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "JD", decode[map[string]any](t, r)["initials"])

	// refresh token 不能访问受保护接口
	r = ts.do(t, http.MethodGet, "/v1/dashboard", nil, bearer(tok.RefreshToken))
	assert.Equal(t, http.StatusUnauthorized, r.status)

	r = ts.do(t, http.MethodPost, "/v1/auth/token/refresh", map[string]string{"refresh_token": tok.RefreshToken})
	require.Equal(t, http.StatusOK, r.status)

	r = ts.do(t, http.MethodPost, "/v1/auth/logout", nil, bearer(tok.AccessToken))
	assert.Equal(t, http.StatusNoContent, r.status)

	r = ts.do(t, http.MethodGet, "/v1/users/me", nil, bearer(tok.AccessToken))
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestForgotPassword(t *testing.T) {
	ts := newTestServer(t, nil)

	r := ts.do(t, http.MethodPost, "/v1/auth/forgot-password", map[string]string{"email": ""})
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "Please enter your email address", r.body.Error.Message)

	r = ts.do(t, http.MethodPost, "/v1/auth/forgot-password", map[string]string{"email": "jane@example.com"})
	assert.Equal(t, http.StatusOK, r.status)
}

func TestJobsAndApplications(t *testing.T) {
	ts := newTestServer(t, nil)
	tok := login(t, ts)

	r := ts.do(t, http.MethodGet, "/v1/jobs?q=developer", nil)
	require.Equal(t, http.StatusOK, r.status)
	jobs := decode[struct {
		Jobs []struct {
			ID string `json:"id"`
		} `json:"jobs"`
		Total int `json:"total"`
	}](t, r)
	require.NotEmpty(t, jobs.Jobs)
	jobID := jobs.Jobs[0].ID

	r = ts.do(t, http.MethodGet, "/v1/jobs/999", nil)
	assert.Equal(t, http.StatusNotFound, r.status)
	assert.Equal(t, "JOB_NOT_FOUND", r.body.Error.Code)

	apply := map[string]string{"name": "Jane Doe", "email": "jane@example.com", "resume_file": "cv.pdf"}
	r = ts.do(t, http.MethodPost, "/v1/jobs/"+jobID+"/apply", apply)
	assert.Equal(t, http.StatusUnauthorized, r.status)

	r = ts.do(t, http.MethodPost, "/v1/jobs/"+jobID+"/apply", map[string]string{"name": "Jane"}, bearer(tok.AccessToken))
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "Please fill in all required fields", r.body.Error.Message)

	r = ts.do(t, http.MethodPost, "/v1/jobs/"+jobID+"/apply", apply, bearer(tok.AccessToken))
	require.Equal(t, http.StatusCreated, r.status)
	appID := decode[map[string]string](t, r)["application_id"]

	r = ts.do(t, http.MethodGet, "/v1/applications?status=pending", nil, bearer(tok.AccessToken))
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, 2, decode[struct {
		Total int `json:"total"`
	}](t, r).Total)

	r = ts.do(t, http.MethodPost, "/v1/applications/"+appID+"/withdraw", nil, bearer(tok.AccessToken))
	assert.Equal(t, http.StatusOK, r.status)
	r = ts.do(t, http.MethodPost, "/v1/applications/"+appID+"/withdraw", nil, bearer(tok.AccessToken))
	assert.Equal(t, http.StatusConflict, r.status)
	assert.Equal(t, "APPLICATION_NOT_WITHDRAWABLE", r.body.Error.Code)

	r = ts.do(t, http.MethodGet, "/v1/applications?status=archived", nil, bearer(tok.AccessToken))
	assert.Equal(t, http.StatusBadRequest, r.status)
}

func TestNotificationsNetworkMessages(t *testing.T) {
	ts := newTestServer(t, nil)
	tok := login(t, ts)
	auth := bearer(tok.AccessToken)

	r := ts.do(t, http.MethodGet, "/v1/notifications?tab=job", nil, auth)
	require.Equal(t, http.StatusOK, r.status)
	notes := decode[struct {
		Notifications []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"notifications"`
		Summary string `json:"summary"`
	}](t, r)
	require.Len(t, notes.Notifications, 1)
	assert.Equal(t, "You have 2 unread notifications", notes.Summary)

	r = ts.do(t, http.MethodPost, "/v1/notifications/"+notes.Notifications[0].ID+"/accept", nil, auth)
	assert.Equal(t, http.StatusConflict, r.status)
	assert.Equal(t, "NOTIFICATION_ACTION_INVALID", r.body.Error.Code)

	r = ts.do(t, http.MethodPost, "/v1/notifications/read-all", nil, auth)
	require.Equal(t, http.StatusOK, r.status)
	assert.EqualValues(t, 2, decode[map[string]int](t, r)["updated"])

	r = ts.do(t, http.MethodGet, "/v1/notifications?tab=bogus", nil, auth)
	assert.Equal(t, http.StatusBadRequest, r.status)

	r = ts.do(t, http.MethodGet, "/v1/network", nil, auth)
	require.Equal(t, http.StatusOK, r.status)
	network := decode[struct {
		Requests []struct {
			ID string `json:"id"`
		} `json:"requests"`
		Connections int `json:"connections"`
	}](t, r)
	require.Len(t, network.Requests, 3)
	assert.Equal(t, 732, network.Connections)

	r = ts.do(t, http.MethodPost, "/v1/network/requests/"+network.Requests[0].ID+"/accept", nil, auth)
	assert.Equal(t, http.StatusOK, r.status)
	r = ts.do(t, http.MethodPost, "/v1/network/requests/"+network.Requests[0].ID+"/ignore", nil, auth)
	assert.Equal(t, http.StatusNotFound, r.status)

	r = ts.do(t, http.MethodGet, "/v1/conversations", nil, auth)
	require.Equal(t, http.StatusOK, r.status)
	convs := decode[[]struct {
		ID string `json:"id"`
	}](t, r)
	require.Len(t, convs, 6)

	r = ts.do(t, http.MethodPost, "/v1/conversations/"+convs[0].ID+"/messages", map[string]string{"content": " "}, auth)
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "MESSAGE_EMPTY", r.body.Error.Code)

	r = ts.do(t, http.MethodPost, "/v1/conversations/"+convs[0].ID+"/messages", map[string]string{"content": "Hi!"}, auth)
	assert.Equal(t, http.StatusCreated, r.status)

	r = ts.do(t, http.MethodGet, "/v1/conversations/"+convs[0].ID, nil, auth)
	require.Equal(t, http.StatusOK, r.status)
}

func TestShowcaseIsPublic(t *testing.T) {
	ts := newTestServer(t, nil)
	login(t, ts)

	r := ts.do(t, http.MethodGet, "/v1/profiles/jane", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "Jane Doe", decode[map[string]any](t, r)["name"])

	r = ts.do(t, http.MethodGet, "/v1/profiles/ghost", nil)
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestAuthRateLimit(t *testing.T) {
	ts := newTestServer(t, cache.NewMemoryLimiter(time.Hour, 2))

	for i := 0; i < 2; i++ {
		r := ts.do(t, http.MethodPost, "/v1/auth/forgot-password", map[string]string{"email": "jane@example.com"})
		assert.Equal(t, http.StatusOK, r.status)
	}

	r := ts.do(t, http.MethodPost, "/v1/auth/forgot-password", map[string]string{"email": "jane@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, r.status)
	assert.Equal(t, "RATE_LIMITED", r.body.Error.Code)

	// 公开的职位接口不受认证限流影响
	r = ts.do(t, http.MethodGet, "/v1/jobs", nil)
	assert.Equal(t, http.StatusOK, r.status)
}
