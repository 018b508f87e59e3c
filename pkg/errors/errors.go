package errors

import stderrors "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// WithMessage 返回同一错误码、不同提示信息的副本，用于把后端或校验给出的文案透传给前端
func (d Definition) WithMessage(message string) Definition {
	d.Message = message
	return d
}

// Is 按错误码比较，使 errors.Is 对 WithMessage 得到的副本同样成立
func (d Definition) Is(target error) bool {
	t, ok := target.(Definition)
	return ok && t.Code == d.Code
}

// 通用错误。
var (
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	Internal        = Definition{Code: "INTERNAL_ERROR", Message: "Internal server error"}
	RateLimited     = Definition{Code: "RATE_LIMITED", Message: "Too many requests"}
	NotFound        = Definition{Code: "NOT_FOUND", Message: "Resource not found"}
	ValidationError = Definition{Code: "VALIDATION_ERROR", Message: "Please fill in all required fields"}
)

// 认证相关错误。
var (
	Unauthorized        = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	CSRFInvalid         = Definition{Code: "CSRF_INVALID", Message: "Invalid CSRF token"}
	CredentialsMissing  = Definition{Code: "CREDENTIALS_MISSING", Message: "Please fill in all fields"}
	LoginFailed         = Definition{Code: "LOGIN_FAILED", Message: "Login failed"}
	RefreshTokenInvalid = Definition{Code: "REFRESH_TOKEN_INVALID", Message: "Refresh token invalid"}
	EmailRequired       = Definition{Code: "EMAIL_REQUIRED", Message: "Please enter your email address"}
	EmailInvalid        = Definition{Code: "EMAIL_INVALID", Message: "Please enter a valid email address"}
	BackendUnavailable  = Definition{Code: "BACKEND_UNAVAILABLE", Message: "Backend unavailable"}
)

// 注册向导错误。
var (
	FieldsMissing     = Definition{Code: "FIELDS_MISSING", Message: "Please fill in all required fields"}
	PasswordMismatch  = Definition{Code: "PASSWORD_MISMATCH", Message: "Passwords do not match"}
	PasswordTooShort  = Definition{Code: "PASSWORD_TOO_SHORT", Message: "Password must be at least 8 characters long"}
	UnknownField      = Definition{Code: "UNKNOWN_FIELD", Message: "Unknown field"}
	InvalidRole       = Definition{Code: "INVALID_ROLE", Message: "Role must be employee, employer or freelancer"}
	WizardNotFound    = Definition{Code: "WIZARD_NOT_FOUND", Message: "Sign-up session not found or expired"}
	WizardStepInvalid = Definition{Code: "WIZARD_STEP_INVALID", Message: "Wizard step invalid"}
	WizardBusy        = Definition{Code: "WIZARD_BUSY", Message: "Submission in progress"}
	WizardSubmitted   = Definition{Code: "WIZARD_SUBMITTED", Message: "Registration already submitted"}
	SubmissionFailed  = Definition{Code: "SUBMISSION_FAILED", Message: "Registration failed"}
)

// 职位与申请错误。
var (
	JobNotFound                = Definition{Code: "JOB_NOT_FOUND", Message: "Job not found"}
	ApplicationNotFound        = Definition{Code: "APPLICATION_NOT_FOUND", Message: "Application not found"}
	ApplicationNotWithdrawable = Definition{Code: "APPLICATION_NOT_WITHDRAWABLE", Message: "Application cannot be withdrawn"}
	ApplicationStatusInvalid   = Definition{Code: "APPLICATION_STATUS_INVALID", Message: "Application status invalid"}
)

// 通知模块错误。
var (
	NotificationNotFound      = Definition{Code: "NOTIFICATION_NOT_FOUND", Message: "Notification not found"}
	NotificationActionInvalid = Definition{Code: "NOTIFICATION_ACTION_INVALID", Message: "Action not available for this notification"}
	NotificationTabInvalid    = Definition{Code: "NOTIFICATION_TAB_INVALID", Message: "Notification tab invalid"}
)

// 人脉、消息与资料错误。
var (
	ConnectionNotFound   = Definition{Code: "CONNECTION_NOT_FOUND", Message: "Connection not found"}
	ConversationNotFound = Definition{Code: "CONVERSATION_NOT_FOUND", Message: "Conversation not found"}
	MessageEmpty         = Definition{Code: "MESSAGE_EMPTY", Message: "Message content is required"}
	ProfileNotFound      = Definition{Code: "PROFILE_NOT_FOUND", Message: "Profile not found"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidRequest.Code:             InvalidRequest,
	Internal.Code:                   Internal,
	RateLimited.Code:                RateLimited,
	NotFound.Code:                   NotFound,
	ValidationError.Code:            ValidationError,
	Unauthorized.Code:               Unauthorized,
	CSRFInvalid.Code:                CSRFInvalid,
	CredentialsMissing.Code:         CredentialsMissing,
	LoginFailed.Code:                LoginFailed,
	RefreshTokenInvalid.Code:        RefreshTokenInvalid,
	EmailRequired.Code:              EmailRequired,
	EmailInvalid.Code:               EmailInvalid,
	BackendUnavailable.Code:         BackendUnavailable,
	FieldsMissing.Code:              FieldsMissing,
	PasswordMismatch.Code:           PasswordMismatch,
	PasswordTooShort.Code:           PasswordTooShort,
	UnknownField.Code:               UnknownField,
	InvalidRole.Code:                InvalidRole,
	WizardNotFound.Code:             WizardNotFound,
	WizardStepInvalid.Code:          WizardStepInvalid,
	WizardBusy.Code:                 WizardBusy,
	WizardSubmitted.Code:            WizardSubmitted,
	SubmissionFailed.Code:           SubmissionFailed,
	JobNotFound.Code:                JobNotFound,
	ApplicationNotFound.Code:        ApplicationNotFound,
	ApplicationNotWithdrawable.Code: ApplicationNotWithdrawable,
	ApplicationStatusInvalid.Code:   ApplicationStatusInvalid,
	NotificationNotFound.Code:       NotificationNotFound,
	NotificationActionInvalid.Code:  NotificationActionInvalid,
	NotificationTabInvalid.Code:     NotificationTabInvalid,
	ConnectionNotFound.Code:         ConnectionNotFound,
	ConversationNotFound.Code:       ConversationNotFound,
	MessageEmpty.Code:               MessageEmpty,
	ProfileNotFound.Code:            ProfileNotFound,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// As 从错误链中取出 Definition
func As(err error) (Definition, bool) {
	var def Definition
	if stderrors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}

// 基础设施层的哨兵错误，由 service 层包装后返回
var (
	ErrTokenGeneratorNotInitialized = stderrors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = stderrors.New("unexpected signing method")
	ErrInvalidToken                 = stderrors.New("invalid token")
	ErrInvalidTokenClaims           = stderrors.New("invalid token claims")
	ErrInvalidTokenType             = stderrors.New("invalid token type")
	ErrUserIDNotFound               = stderrors.New("user id not found in token")
)
