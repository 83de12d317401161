package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/angelmondragon/storefront/internal/notify"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the store refused the operation
	ExitCommandError = 2 // bad usage, configuration or an unreachable backend
)

// ExitError carries the exit code a command should terminate with.
type ExitError struct {
	Code int
	Err  error
	// Reported is set once the error has been shown to the user.
	Reported bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Reported reports whether err was already printed by a command.
func Reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Reported
}

// ExitCode maps err onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeValidation, pkgerrors.CodeUnauthorized, pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict, pkgerrors.CodeRejected, pkgerrors.CodeRateLimit:
		return ExitFailure
	default:
		return ExitCommandError
	}
}

// Response is the JSON envelope every command prints in json format.
type Response struct {
	Status        string                `json:"status"`
	Data          any                   `json:"data,omitempty"`
	Error         *ResponseError        `json:"error,omitempty"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// Output renders command results in the selected format.
type Output struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool

	// Seen holds the notifications raised during the command.
	Seen *notify.Recorder
}

// Success prints data. In text format render writes the human view.
func (o *Output) Success(data any, render func(w io.Writer)) error {
	if o.Format == FormatJSON {
		return json.NewEncoder(o.Writer).Encode(Response{
			Status:        "ok",
			Data:          data,
			Notifications: o.notifications(),
		})
	}
	if render != nil {
		render(o.Writer)
	}
	return nil
}

// Error prints err and returns it marked as reported, carrying its exit code.
// In text format an error the notifier already showed is not repeated.
func (o *Output) Error(err error) error {
	if err == nil {
		return nil
	}
	code := string(pkgerrors.CodeOf(err))
	message := err.Error()
	reason := ""
	if typed := pkgerrors.As(err); typed != nil {
		message = typed.Message()
		reason = typed.Reason().String()
	}

	if o.Format == FormatJSON {
		if encErr := json.NewEncoder(o.Writer).Encode(Response{
			Status:        "error",
			Error:         &ResponseError{Code: code, Reason: reason, Message: message},
			Notifications: o.notifications(),
		}); encErr != nil {
			return encErr
		}
		return o.reported(err)
	}

	if len(o.notifications()) == 0 {
		fmt.Fprintf(o.errWriter(), "Error [%s]: %s\n", code, message)
	}
	if o.Verbose {
		fmt.Fprintf(o.errWriter(), "Details: %v\n", err)
	}
	return o.reported(err)
}

func (o *Output) reported(err error) error {
	return &ExitError{Code: ExitCode(err), Err: err, Reported: true}
}

// Debugf prints only in verbose mode, always to the error stream.
func (o *Output) Debugf(format string, args ...any) {
	if !o.Verbose {
		return
	}
	fmt.Fprintf(o.errWriter(), format+"\n", args...)
}

func (o *Output) notifications() []notify.Notification {
	if o.Seen == nil {
		return nil
	}
	return o.Seen.All()
}

func (o *Output) errWriter() io.Writer {
	if o.ErrWriter != nil {
		return o.ErrWriter
	}
	return o.Writer
}
