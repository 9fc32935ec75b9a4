// Package execerr carries the outcome of a failed external command in a
// form suitable for error reporting: the argument vector, exit code, and
// captured streams, rendered as a message with truncated excerpts.
package execerr

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// MaxExcerpt bounds how much of each captured stream the rendered message
// includes.
const MaxExcerpt = 512

// ExitError describes an external command that finished with a non-zero
// status. It is a plain data carrier; no retry or classification logic.
type ExitError struct {
	Argv   []string
	Code   int
	Stdout []byte
	Stderr []byte
}

// New builds an ExitError from the parts the caller captured.
func New(argv []string, code int, stdout, stderr []byte) *ExitError {
	return &ExitError{
		Argv:   argv,
		Code:   code,
		Stdout: stdout,
		Stderr: stderr,
	}
}

// From converts err, as returned by os/exec, into an *ExitError carrying
// argv and the stderr os/exec captured. Nil and non-exit errors pass
// through unchanged.
func From(argv []string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{
		Argv:   argv,
		Code:   exitErr.ExitCode(),
		Stderr: exitErr.Stderr,
	}
}

func (e *ExitError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "command %q failed with exit status %d", strings.Join(e.Argv, " "), e.Code)
	if excerpt := Excerpt(e.Stdout); excerpt != "" {
		fmt.Fprintf(&b, "\nstdout: %s", excerpt)
	}
	if excerpt := Excerpt(e.Stderr); excerpt != "" {
		fmt.Fprintf(&b, "\nstderr: %s", excerpt)
	}
	return b.String()
}

// Excerpt trims stream output for inclusion in a message, keeping at most
// MaxExcerpt bytes and marking elision.
func Excerpt(stream []byte) string {
	s := strings.TrimSpace(string(stream))
	if len(s) <= MaxExcerpt {
		return s
	}
	return s[:MaxExcerpt] + "... (truncated)"
}
