package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingToken  = errors.New("missing token")
	ErrUserIDTooLong = errors.New("user id too long")
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindTransientIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransientIO:
		return "transient_io"
	}
	return "unknown"
}

// Error codes sent to clients in the `error` field of an error event.
const (
	CodeInvalidPayload    = "invalid_payload"
	CodeUnknownEvent      = "unknown_event"
	CodeChatNotFound      = "chat_not_found"
	CodeNotInChat         = "not_in_chat"
	CodeMessageNotFound   = "message_not_found"
	CodeForbidden         = "forbidden"
	CodeNotConnected      = "not_connected"
	CodeOffline           = "offline"
	CodeBusy              = "busy"
	CodeInvalidCall       = "invalid_call"
	CodeCallInProgress    = "call_in_progress"
	CodeInvalidCallState  = "invalid_call_state"
	CodePersistenceFailed = "persistence_failed"
	CodeSessionReplaced   = "session_replaced"
	CodeRateLimited       = "rate_limited"
)

// Error is a failure scoped to the event that produced it. It is reported to the
// acting connection only.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Validation(msg string) *Error {
	return NewError(KindValidation, CodeInvalidPayload, msg)
}

func NotInChat() *Error {
	return NewError(KindAuthorization, CodeNotInChat, "You are no longer part of this chat.")
}

func ChatNotFound() *Error {
	return NewError(KindNotFound, CodeChatNotFound, "This chat no longer exists. It may have been deleted.")
}

func MessageNotFound() *Error {
	return NewError(KindNotFound, CodeMessageNotFound, "Message not found")
}

func Persistence(msg string, err error) *Error {
	return &Error{Kind: KindTransientIO, Code: CodePersistenceFailed, Message: msg, Err: err}
}

// AsError extracts a *Error, wrapping unknown errors as transient IO failures.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Persistence("operation failed", err)
}
