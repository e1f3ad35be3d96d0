package apperrors

import "errors"

// Kind classifies a failure for propagation and user-facing mapping.
type Kind int

const (
	// KindInternal covers unexpected failures that must never be shown raw.
	KindInternal Kind = iota
	// KindValidation: bad input shape, fatal to the call, not retried.
	KindValidation
	// KindAuth: wrong credential, unverified email, replayed code.
	KindAuth
	// KindNotFound: no account, challenge or item for the given key.
	KindNotFound
	// KindTransientStore: remote store unreachable, recovered via local fallback.
	KindTransientStore
	// KindQuotaExceeded: local store full, no further writes this session.
	KindQuotaExceeded
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the short classified text safe to surface to a caller.
func (e *Error) Message() string {
	return e.Msg
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the classification of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// UserMessage extracts the surfaceable message of a classified error. For
// unclassified errors it returns a generic text, never the raw error string.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return "unexpected error"
}

func IsValidation(err error) bool     { return KindOf(err) == KindValidation }
func IsAuth(err error) bool           { return KindOf(err) == KindAuth }
func IsNotFound(err error) bool       { return KindOf(err) == KindNotFound }
func IsTransientStore(err error) bool { return KindOf(err) == KindTransientStore }
func IsQuotaExceeded(err error) bool  { return KindOf(err) == KindQuotaExceeded }
