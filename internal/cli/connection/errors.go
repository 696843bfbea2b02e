package connection

import "fmt"

// ErrorCode classifies a ClientError.
type ErrorCode string

const (
	CodeTransport      ErrorCode = "TRANSPORT"
	CodeSessionExpired ErrorCode = "SESSION_EXPIRED"
	CodeRequest        ErrorCode = "REQUEST_FAILED"
	CodeAuthRequired   ErrorCode = "AUTH_REQUIRED"
	CodeRoleMismatch   ErrorCode = "ROLE_MISMATCH"
	CodeDownload       ErrorCode = "DOWNLOAD_FAILED"
	CodeEmptyDownload  ErrorCode = "EMPTY_DOWNLOAD"
)

// User-facing messages.
const (
	MsgTransport      = "ජාල/සම්බන්ධතා ගැටලුවක්. කරුණාකර නැවත උත්සාහ කරන්න."
	MsgSessionExpired = "නැවත ඇතුල් වන්න."
	MsgAuthRequired   = "Authentication required. Please login again."
	MsgRoleMismatch   = "Signed-in user does not have the required role."
	MsgEmptyDownload  = "Downloaded file is empty. Report may not have data."
)

// ClientError is the single error type surfaced by Client.
//
// Message is safe to show to the user. Cause keeps the underlying error for
// logs and errors.As; it never leaks into Message for transport failures.
type ClientError struct {
	Code       ErrorCode
	Message    string
	Status     int    // HTTP status, 0 when no response was received
	ServerCode string // body "code" or "error_code", if any
	Cause      error
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ClientError with the same code.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for errors.Is.
var (
	ErrTransport      = &ClientError{Code: CodeTransport, Message: MsgTransport}
	ErrSessionExpired = &ClientError{Code: CodeSessionExpired, Message: MsgSessionExpired, Status: 401}
	ErrRequest        = &ClientError{Code: CodeRequest, Message: "request failed"}
	ErrAuthRequired   = &ClientError{Code: CodeAuthRequired, Message: MsgAuthRequired}
	ErrRoleMismatch   = &ClientError{Code: CodeRoleMismatch, Message: MsgRoleMismatch}
	ErrDownload       = &ClientError{Code: CodeDownload, Message: "Report download failed"}
	ErrEmptyDownload  = &ClientError{Code: CodeEmptyDownload, Message: MsgEmptyDownload}
)

func transportError(cause error) *ClientError {
	return &ClientError{Code: CodeTransport, Message: MsgTransport, Cause: cause}
}

// rawTransportError keeps the cause text as the message.
func rawTransportError(cause error) *ClientError {
	return &ClientError{Code: CodeTransport, Message: cause.Error(), Cause: cause}
}

func sessionExpiredError() *ClientError {
	return &ClientError{Code: CodeSessionExpired, Message: MsgSessionExpired, Status: 401}
}

func requestError(status int, body *Body) *ClientError {
	msg := body.firstText("error", "message")
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	return &ClientError{
		Code:       CodeRequest,
		Message:    msg,
		Status:     status,
		ServerCode: body.firstText("code", "error_code"),
	}
}
