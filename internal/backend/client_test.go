package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProNetwork/internal/wizard"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c, srv
}

func completeDraft() wizard.Draft {
	d := wizard.NewDraft()
	d.Username = "janedoe"
	d.Email = "jane@example.com"
	d.Password = "supersecret"
	d.ConfirmPassword = "supersecret"
	d.FirstName = "Jane"
	d.LastName = "Doe"
	d.MobileNumber = "+1 555 0100"
	return d
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSubmitSendsRegistrationBody(t *testing.T) {
	var got map[string]any
	var headers http.Header
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, RegisterPath, r.URL.Path)
		headers = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
	})

	require.NoError(t, c.Submit(context.Background(), completeDraft()))

	assert.Contains(t, headers.Get("Content-Type"), "application/json")
	assert.Equal(t, "application/json", headers.Get("Accept"))
	assert.Equal(t, "janedoe", got["username"])
	assert.Equal(t, "employee", got["role"])
	assert.Equal(t, "+1 555 0100", got["mobile_number"])
	assert.NotContains(t, got, "confirmPassword")
}

func TestSubmitErrorDetailPrecedence(t *testing.T) {
	cases := []struct {
		name string
		body any
		want string
	}{
		{"detail", map[string]any{"detail": "username taken", "error": "ignored"}, "username taken"},
		{"error", map[string]any{"error": "email exists"}, "email exists"},
		{"neither", map[string]any{"username": []string{"A user with that username already exists."}}, "Registration failed"},
		{"numeric detail", map[string]any{"detail": 42}, "42"},
		{"list detail", map[string]any{"detail": []string{"Username taken.", "Email taken."}}, "Username taken., Email taken."},
		{"object detail", map[string]any{"detail": map[string]any{"username": []string{"taken"}}}, `{"username":["taken"]}`},
		{"empty detail falls through", map[string]any{"detail": []string{}, "error": "email exists"}, "email exists"},
		{"null detail", map[string]any{"detail": nil}, "Registration failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, tc.body)
			})

			err := c.Submit(context.Background(), completeDraft())
			var subErr *SubmissionError
			require.ErrorAs(t, err, &subErr)
			assert.Equal(t, tc.want, subErr.Detail)
			assert.Equal(t, http.StatusBadRequest, subErr.Status)
		})
	}
}

func TestSubmitNonJSONErrorBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>Server Error</html>"))
	})

	err := c.Submit(context.Background(), completeDraft())
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "unexpected response", subErr.Detail)
}

func TestSubmitNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: url, Timeout: time.Second})
	require.NoError(t, err)

	err = c.Submit(context.Background(), completeDraft())
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "unexpected response", subErr.Detail)
	assert.Zero(t, subErr.Status)
}

func TestSubmitDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"detail": "try later"})
	})

	require.Error(t, c.Submit(context.Background(), completeDraft()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body loginBody
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Username == "janedoe" && body.Password == "supersecret" {
			writeJSON(w, http.StatusOK, map[string]any{
				"token": "abc123",
				"user":  map[string]any{"username": "janedoe", "email": "jane@example.com"},
			})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
	})

	res, err := c.Login(context.Background(), "janedoe", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "abc123", res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, "jane@example.com", res.User.Email)

	_, err = c.Login(context.Background(), "janedoe", "wrong")
	var loginErr *Error
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, "Invalid credentials", loginErr.Message)
}

func TestLoginNonJSONAndMissingMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	_, err := c.Login(context.Background(), "a", "b")
	assert.EqualError(t, err, "Server returned non-JSON response")

	c, _ = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{})
	})
	_, err = c.Login(context.Background(), "a", "b")
	assert.EqualError(t, err, "Login failed")
}

func TestProfileSendsAuthorizationScheme(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if auth == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "no token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"username": "janedoe", "first_name": "Jane", "last_name": "Doe"})
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	user, err := c.Profile(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Token abc123", auth)
	assert.Equal(t, "Jane", user.FirstName)

	bearer, err := New(Options{BaseURL: srv.URL, AuthScheme: "Bearer"})
	require.NoError(t, err)
	_, err = bearer.Profile(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", auth)

	_, err = c.Profile(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
