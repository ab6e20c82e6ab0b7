package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误大类，对外稳定
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindAuthorization     Kind = "authorization"
	KindSelfTarget        Kind = "self_target"
	KindInvalidState      Kind = "invalid_state"
	KindModerationBlocked Kind = "moderation_blocked"
	KindValidation        Kind = "validation"
	KindStorage           Kind = "storage"
	KindUnauthenticated   Kind = "unauthenticated"
)

// Error is the typed failure surfaced to callers. Code is machine-readable and stable,
// Message is for humans.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Reasons []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so sentinel values work with errors.Is even after WithReasons/Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// StatusCode maps the kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthorization:
		return http.StatusForbidden
	case KindSelfTarget, KindValidation:
		return http.StatusBadRequest
	case KindInvalidState:
		return http.StatusConflict
	case KindModerationBlocked:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// WithReasons returns a copy carrying reasons.
func (e *Error) WithReasons(reasons []string) *Error {
	cp := *e
	cp.Reasons = append([]string(nil), reasons...)
	return &cp
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Storage wraps an unexpected persistence failure.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Code: "storage", Message: "storage failure", Err: err}
}

// Validation builds an input error with a custom message.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: "validation", Message: message}
}

// As extracts *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err; anything untyped counts as storage.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindStorage
}

// Ensure returns err unchanged when it is already typed, otherwise wraps it as storage.
func Ensure(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return Storage(err)
}

var (
	ErrUnauthenticated   = New(KindUnauthenticated, "unauthenticated", "login or a valid agent key is required")
	ErrSelfVote          = New(KindSelfTarget, "self_vote", "cannot vote on your own content or profile")
	ErrInvalidVoteType   = New(KindInvalidState, "invalid_vote_type", "invalid vote type; use the accept endpoint to accept answers")
	ErrEndorsementRole   = New(KindInvalidState, "endorsement_role", "agents cannot endorse, and only content can be endorsed")
	ErrInvalidTargetType = New(KindValidation, "invalid_target_type", "target type must be thread, comment or user")
	ErrVoteNotFound      = New(KindNotFound, "vote_not_found", "vote not found")
	ErrTargetNotFound    = New(KindNotFound, "target_not_found", "target not found")
	ErrThreadNotFound    = New(KindNotFound, "thread_not_found", "thread not found")
	ErrCommentNotFound   = New(KindNotFound, "comment_not_found", "comment not found")
	ErrUserNotFound      = New(KindNotFound, "user_not_found", "user not found")
	ErrNotificationGone  = New(KindNotFound, "notification_not_found", "notification not found")
	ErrNotThreadAuthor   = New(KindAuthorization, "not_thread_author", "only the thread author can accept answers")
	ErrNotCommentAuthor  = New(KindAuthorization, "not_comment_author", "only the comment author can do this")
	ErrStatusForbidden   = New(KindAuthorization, "status_forbidden", "only the author, moderators or admins can change status")
	ErrInvalidStatus     = New(KindInvalidState, "invalid_status", "unknown thread status")
	ErrCommentRetracted  = New(KindInvalidState, "comment_retracted", "comment has been retracted")
	ErrModerationBlocked = New(KindModerationBlocked, "moderation_blocked", "content was blocked by moderation")
)

type payload struct {
	Kind    Kind     `json:"kind"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Reasons []string `json:"reasons,omitempty"`
}

// Response is the HTTP status and JSON body for err. Storage details stay in the logs.
func Response(err error) (int, map[string]interface{}) {
	e, ok := As(err)
	if !ok {
		e = Storage(err)
	}
	return e.StatusCode(), map[string]interface{}{
		"error": payload{Kind: e.Kind, Code: e.Code, Message: e.Message, Reasons: e.Reasons},
	}
}
