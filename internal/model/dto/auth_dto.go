package dto

// ========== Auth 相关 DTO ==========

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthUserSnapshot 登录时的用户快照
type AuthUserSnapshot struct {
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Role      string `json:"role,omitempty"`
}

// LoginResponse 登录响应，redirect 告诉前端下一步去哪
type LoginResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	Redirect     string           `json:"redirect"`
	User         AuthUserSnapshot `json:"user"`
	ExpiresIn    int              `json:"expires_in"`
}

// RefreshTokenRequest 刷新 token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse 刷新 token 响应
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ForgotPasswordRequest 忘记密码请求
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// MessageResponse 只带一句提示的响应
type MessageResponse struct {
	Message string `json:"message"`
}
