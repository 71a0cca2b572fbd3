package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind — closed set of failure classes shared by every component
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindPlatform
	KindStore
	KindInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPlatform:
		return "platform error"
	case KindStore:
		return "store error"
	case KindInvariantViolation:
		return "invariant violation"
	default:
		return "unknown error"
	}
}

var (
	ErrNotFound               = stderrors.New("not found")
	ErrNothingToSave          = stderrors.New("nothing to save")
	ErrOutsideTemplate        = stderrors.New("room is outside any template category")
	ErrRoomNotMonitored       = stderrors.New("room is not monitored")
	ErrChannelIDMismatch      = stderrors.New("resolved id does not match requested id")
	ErrNotVoiceChannel        = stderrors.New("channel is not a guild voice channel")
	ErrNotCategoryChannel     = stderrors.New("channel is not a category")
	ErrRevokeOwner            = stderrors.New("the room owner cannot be revoked")
	ErrProfileOutsideTemplate = stderrors.New("profile was saved under another template")
)

// Error — classified failure of a single operation
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every NotFound-kind error match ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func NotFound(op string, err error) error {
	if err == nil {
		err = ErrNotFound
	}
	return E(KindNotFound, op, err)
}

func Platform(op string, err error) error {
	return E(KindPlatform, op, err)
}

func Store(op string, err error) error {
	return E(KindStore, op, err)
}

func Invariant(op string, err error) error {
	return E(KindInvariantViolation, op, err)
}

// KindOf returns the kind of the outermost classified error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err means the thing is absent. Invariant
// violations count: a mismatched lookup is never trusted.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrNotFound) {
		return true
	}
	var e *Error
	for stderrors.As(err, &e) {
		if e.Kind == KindNotFound || e.Kind == KindInvariantViolation {
			return true
		}
		err = e.Err
		if err == nil {
			break
		}
	}
	return false
}

// Is and Join are re-exported so callers importing this package need not alias the standard one.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func Join(errs ...error) error {
	return stderrors.Join(errs...)
}

// UserMessage converts err into a sentence safe to show an end user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrNothingToSave):
		return "Nothing to save: nobody has been invited to this room yet."
	case stderrors.Is(err, ErrOutsideTemplate):
		return "This room is outside an autoroom category."
	case stderrors.Is(err, ErrRoomNotMonitored):
		return "The connected voice channel was not found."
	case stderrors.Is(err, ErrRevokeOwner):
		return "The room owner cannot be removed from their own room."
	case stderrors.Is(err, ErrProfileOutsideTemplate):
		return "This profile was saved for another autoroom category."
	}

	switch KindOf(err) {
	case KindNotFound, KindInvariantViolation:
		return "The requested room or record was not found."
	case KindPlatform:
		return "The chat platform rejected the request, please try again later."
	default:
		return "Something went wrong, please try again later."
	}
}
