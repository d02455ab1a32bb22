// Package errors provides domain-specific error types for hdfs-shell.
//
// The types follow the shell's failure taxonomy: user input problems are
// reported as text and never escape a command, external operation failures
// become faults only when fail-fast is on, connection I/O faults tear down a
// single client, and startup faults abort the process.
package errors

import (
	"errors"
	"fmt"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrNoSuchPath   = errors.New("No such file or directory")
	ErrNotConnected = errors.New("not connected")
	ErrExit         = errors.New("exit requested")
)

// ── Structured error types ───────────────────────────────────────────

// UsageError is a user input problem (unknown command, missing argument,
// invalid target).  It is rendered to the caller as plain text.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// Usagef builds a UsageError from a format string.
func Usagef(format string, args ...interface{}) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// OperationError is raised when the filesystem capability returns a
// non-zero code while fail-fast is enabled.
type OperationError struct {
	Command string
	Code    int
}

func (e *OperationError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("HDFS command finished with result code %d", e.Code)
	}
	return fmt.Sprintf("HDFS command %s finished with result code %d", e.Command, e.Code)
}

// NetworkError represents a failure in a socket or stream operation.
type NetworkError struct {
	Op        string // operation: "dial", "listen", "accept", "write", "read"
	Addr      string // socket path or network address involved
	Err       error  // underlying error
	Retryable bool   // whether the caller should retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SSHError represents an SSH gateway failure with host context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey", "session", "exec"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// StartupError is fatal: the daemon or shell could not come up.
type StartupError struct {
	Op   string // "bind", "connect", "config"
	Path string
	Err  error
}

func (e *StartupError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("startup %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("startup %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, automatically detecting retryability
// from the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// Startup creates a StartupError.
func Startup(op, path string, err error) *StartupError {
	return &StartupError{Op: op, Path: path, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// IsUsage reports whether err is a user input problem.
func IsUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// ExitCode maps err to a process exit status.  Nil is 0, an
// OperationError carries its own code clamped to 1..255, anything
// else is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var oe *OperationError
	if errors.As(err, &oe) {
		code := oe.Code & 0xff
		if code == 0 {
			code = 1
		}
		return code
	}
	return 1
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
