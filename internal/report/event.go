package report

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-stack/stack"
	pkgerrors "github.com/pkg/errors"
)

type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

type Frame struct {
	Function string
	Module   string
	File     string
	Line     int
}

// Exception is one link of an error's causal chain. Stacktrace frames are
// ordered outermost call first.
type Exception struct {
	Type       string
	Value      string
	Stacktrace []Frame
}

// Event is what gets submitted to the error tracker. Exceptions are ordered
// root cause first.
type Event struct {
	Message    string
	Exceptions []Exception
	Tags       map[string]string
	Extra      map[string]string
	Level      Level
}

// EventFromError walks err's causal chain into an Event.
func EventFromError(err error) *Event {
	var chain []Exception
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, Exception{
			Type:       typeName(e),
			Value:      e.Error(),
			Stacktrace: stackOf(e),
		})
	}
	slices.Reverse(chain)

	ev := &Event{
		Exceptions: chain,
		Tags:       map[string]string{},
		Extra:      map[string]string{},
		Level:      LevelError,
	}
	if err != nil {
		ev.Message = err.Error()
	}
	return ev
}

// NewEvent builds a message-only event, used for failures that have no
// error value.
func NewEvent(level Level, message string) *Event {
	return &Event{
		Message: message,
		Tags:    map[string]string{},
		Extra:   map[string]string{},
		Level:   level,
	}
}

func typeName(err error) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

type callStacker interface {
	Stack() stack.CallStack
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

func stackOf(err error) []Frame {
	switch e := err.(type) {
	case callStacker:
		return fromCallStack(e.Stack())
	case stackTracer:
		return fromStackTrace(e.StackTrace())
	default:
		return nil
	}
}

func fromCallStack(cs stack.CallStack) []Frame {
	if len(cs) == 0 {
		return nil
	}
	frames := make([]Frame, 0, len(cs))
	for i := len(cs) - 1; i >= 0; i-- {
		c := cs[i]
		line, _ := strconv.Atoi(fmt.Sprintf("%d", c))
		frames = append(frames, Frame{
			Function: fmt.Sprintf("%n", c),
			Module:   fmt.Sprintf("%k", c),
			File:     fmt.Sprintf("%+s", c),
			Line:     line,
		})
	}
	return frames
}

func fromStackTrace(st pkgerrors.StackTrace) []Frame {
	if len(st) == 0 {
		return nil
	}
	frames := make([]Frame, 0, len(st))
	for i := len(st) - 1; i >= 0; i-- {
		f := st[i]
		line, _ := strconv.Atoi(fmt.Sprintf("%d", f))
		frames = append(frames, Frame{
			Function: fmt.Sprintf("%n", f),
			File:     fmt.Sprintf("%s", f),
			Line:     line,
		})
	}
	return frames
}
