// Package record holds small named data carriers shared by callers that
// report on process identity and call sites.
package record

import (
	"fmt"
	"runtime"
)

// GroupUser pairs the numeric ids of a user and its primary group.
type GroupUser struct {
	UID int
	GID int
}

func (g GroupUser) String() string {
	return fmt.Sprintf("%d:%d", g.UID, g.GID)
}

// Frame identifies one call site.
type Frame struct {
	File     string
	Line     int
	Function string
}

// Caller captures the frame skip levels above the caller of Caller.
// skip 0 is the immediate caller.
func Caller(skip int) (Frame, bool) {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Frame{}, false
	}
	frame := Frame{File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		frame.Function = fn.Name()
	}
	return frame, true
}

func (f Frame) String() string {
	return fmt.Sprintf("%s:%d %s", f.File, f.Line, f.Function)
}
