package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code and a
// stable machine-readable kind that clients can branch on.
type AppError struct {
	Code    int         `json:"code"`
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code int, kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details interface{}) *AppError {
	return &AppError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: e.Message,
		Details: details,
		Err:     e.Err,
	}
}

// Common errors
var (
	// 400 Bad Request
	ErrBadRequest = New(http.StatusBadRequest, "bad_request", "請求格式錯誤")
	ErrValidation = New(http.StatusBadRequest, "validation_failed", "驗證失敗")

	// 401 Unauthorized
	ErrUnauthorized       = New(http.StatusUnauthorized, "unauthorized", "未授權的請求")
	ErrInvalidToken       = New(http.StatusUnauthorized, "invalid_token", "無效的 Token")
	ErrTokenExpired       = New(http.StatusUnauthorized, "token_expired", "Token 已過期")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "invalid_credentials", "帳號或密碼錯誤")

	// 403 Forbidden
	ErrForbidden   = New(http.StatusForbidden, "forbidden", "禁止存取")
	ErrNotRoomHost = New(http.StatusForbidden, "not_room_host", "只有房主可以開始遊戲")

	// 404 Not Found
	ErrNotFound     = New(http.StatusNotFound, "not_found", "資源不存在")
	ErrUserNotFound = New(http.StatusNotFound, "user_not_found", "用戶不存在")
	ErrRoomNotFound = New(http.StatusNotFound, "room_not_found", "房間不存在")
	ErrSaveNotFound = New(http.StatusNotFound, "save_not_found", "存檔不存在")

	// 409 Conflict
	ErrUsernameTaken   = New(http.StatusConflict, "username_taken", "使用者名稱已存在")
	ErrEmailTaken      = New(http.StatusConflict, "email_taken", "電子郵件已存在")
	ErrRoomNotJoinable = New(http.StatusConflict, "room_not_joinable", "房間目前無法加入")

	// 422 Unprocessable Entity
	ErrRoomFull = New(http.StatusUnprocessableEntity, "room_full", "房間已滿")

	// 429 Too Many Requests
	ErrTooManyRequests = New(http.StatusTooManyRequests, "too_many_requests", "請求過於頻繁，請稍後再試")

	// 500 Internal Server Error
	// code_exhausted covers the room-code retry budget running out; the
	// client sees a generic server fault, the real cause goes to the log.
	ErrInternal      = New(http.StatusInternalServerError, "internal_error", "伺服器內部錯誤")
	ErrCodeExhausted = New(http.StatusInternalServerError, "code_exhausted", "伺服器內部錯誤")
)

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetHTTPStatus returns the HTTP status code for an error
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// GetKind returns the machine-readable error kind
func GetKind(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return "internal_error"
}

// GetMessage returns the error message
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "伺服器內部錯誤"
}
