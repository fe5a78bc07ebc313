package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow failures so the HTTP boundary can map them
// to stable responses. Dependency failures (mail, snapshots) never surface
// here; they are logged and swallowed.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindConflict
	KindIllegalArgument
	KindIllegalState
)

type WorkflowError struct {
	Kind    ErrorKind
	Message string
}

func (e *WorkflowError) Error() string {
	return e.Message
}

func NotFoundf(format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func IllegalArgumentf(format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindIllegalArgument, Message: fmt.Sprintf(format, args...)}
}

func IllegalStatef(format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindIllegalState, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the workflow kind of err, if it carries one.
func KindOf(err error) (ErrorKind, bool) {
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr.Kind, true
	}
	return 0, false
}

func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
