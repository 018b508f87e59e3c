package backend

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"ProNetwork/pkg/logger"
)

const (
	loginFailed   = "Login failed"
	nonJSONReply  = "Server returned non-JSON response"
	unreachable   = "Unable to reach the server"
	profileFailed = "Failed to fetch user data"
)

// ErrUnauthorized 表示后端拒绝了保存的 token
var ErrUnauthorized = stderrors.New("backend rejected token")

// Error 是登录或获取资料失败时给用户的提示
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

// User 是后端返回的用户资料
type User struct {
	ID           int64  `json:"id,omitempty"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Location     string `json:"location"`
	Bio          string `json:"bio"`
	Role         string `json:"role"`
	MobileNumber string `json:"mobile_number"`
	Website      string `json:"website"`
	LinkedIn     string `json:"linkedin"`
	GitHub       string `json:"github"`
	Twitter      string `json:"twitter"`
	Skills       string `json:"skills"`
	Experience   string `json:"experience"`
}

// LoginResult 是后端登录成功的响应
type LoginResult struct {
	User  *User  `json:"user,omitempty"`
	Token string `json:"token"`
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 用用户名和密码换取后端 token
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	r, err := c.do(ctx, consts.MethodPost, LoginPath, loginBody{Username: username, Password: password}, "")
	if err != nil {
		logger.Logger.Warn("Login request failed", zap.String("username", username), zap.Error(err))
		return nil, &Error{Message: unreachable}
	}

	if !r.isJSON() {
		return nil, &Error{Status: r.status, Message: nonJSONReply}
	}

	if !r.ok() {
		msg, _ := messageFrom(r.body, "error", "detail")
		if msg == "" {
			msg = loginFailed
		}
		logger.Logger.Info("Login rejected", zap.String("username", username), zap.Int("status", r.status))
		return nil, &Error{Status: r.status, Message: msg}
	}

	var result LoginResult
	if err := json.Unmarshal(r.body, &result); err != nil || result.Token == "" {
		return nil, &Error{Status: r.status, Message: loginFailed}
	}

	return &result, nil
}

// Profile 用保存的后端 token 获取当前用户
func (c *Client) Profile(ctx context.Context, token string) (*User, error) {
	r, err := c.do(ctx, consts.MethodGet, ProfilePath, nil, token)
	if err != nil {
		logger.Logger.Warn("Profile request failed", zap.Error(err))
		return nil, &Error{Message: unreachable}
	}

	if r.status == consts.StatusUnauthorized || r.status == consts.StatusForbidden {
		return nil, ErrUnauthorized
	}

	if !r.ok() {
		logger.Logger.Warn("Profile request rejected",
			zap.Int("status", r.status),
			zap.ByteString("body", truncate(r.body, 256)),
		)
		return nil, &Error{Status: r.status, Message: profileFailed}
	}

	var user User
	if err := json.Unmarshal(r.body, &user); err != nil {
		return nil, &Error{Status: r.status, Message: profileFailed}
	}

	return &user, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
