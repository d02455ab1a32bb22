package errors

import (
	"fmt"
	"io"
	"net"
	"testing"
)

func TestNetworkError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  NetworkError
		want string
	}{
		{
			name: "retryable",
			err:  NetworkError{Op: "read", Addr: "/tmp/s.sock", Err: io.EOF, Retryable: true},
			want: "read /tmp/s.sock: EOF (retryable)",
		},
		{
			name: "non-retryable",
			err:  NetworkError{Op: "listen", Addr: "/var/tmp/hdfs-shell.sock", Err: fmt.Errorf("bind failed")},
			want: "listen /var/tmp/hdfs-shell.sock: bind failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	err := &NetworkError{Op: "read", Addr: "x", Err: io.EOF}
	if !Is(err, io.EOF) {
		t.Error("should unwrap to io.EOF")
	}
}

func TestOperationError_Format(t *testing.T) {
	tests := []struct {
		err  OperationError
		want string
	}{
		{OperationError{Command: "ls", Code: 1}, "HDFS command ls finished with result code 1"},
		{OperationError{Code: 255}, "HDFS command finished with result code 255"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"operation", &OperationError{Command: "test", Code: 1}, 1},
		{"wrapped operation", fmt.Errorf("script: %w", &OperationError{Code: 2}), 2},
		{"negative code", &OperationError{Code: -1}, 255},
		{"multiple of 256", &OperationError{Code: 256}, 1},
		{"plain", fmt.Errorf("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUsageError(t *testing.T) {
	err := Usagef("Unknown command %s", "frob")
	if err.Error() != "Unknown command frob" {
		t.Errorf("got %q", err.Error())
	}
	if !IsUsage(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsUsage should see through wrapping")
	}
	if IsUsage(io.EOF) {
		t.Error("io.EOF is not a usage error")
	}
}

func TestStartupError(t *testing.T) {
	inner := fmt.Errorf("permission denied")
	err := Startup("bind", "/var/tmp/hdfs-shell.sock", inner)
	want := "startup bind /var/tmp/hdfs-shell.sock: permission denied"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
	if !Is(err, inner) {
		t.Error("should unwrap to inner error")
	}
	if got := Startup("config", "", inner).Error(); got != "startup config: permission denied" {
		t.Errorf("got %q", got)
	}
}

func TestSSHError_Format(t *testing.T) {
	err := WrapSSH("handshake", "edge.example.com", 22, fmt.Errorf("connection refused"))
	want := "ssh handshake edge.example.com:22: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !Is(err, err.Err) {
		t.Error("should unwrap to inner error")
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "fs",
				Value:   "s3",
				Message: "unknown filesystem backend",
				Hint:    "use hdfs or mem",
			},
			want: "config: --fs=s3: unknown filesystem backend\n  hint: use hdfs or mem",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "namenode",
				Message: "required with --fs hdfs",
			},
			want: "config: --namenode: required with --fs hdfs",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable network", &NetworkError{Op: "dial", Addr: "x", Err: io.EOF, Retryable: true}, true},
		{"non-retryable network", &NetworkError{Op: "dial", Addr: "x", Err: io.EOF, Retryable: false}, false},
		{"plain error", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyRetryable_NetOpError(t *testing.T) {
	opErr := &net.OpError{
		Op:  "dial",
		Net: "unix",
		Err: &net.DNSError{IsTemporary: true},
	}
	if !classifyRetryable(opErr) {
		t.Error("temporary OpError should be retryable")
	}
}

func TestSentinels(t *testing.T) {
	sentinels := []error{
		ErrNoSuchPath, ErrNotConnected, ErrExit,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should be distinct", i, j)
			}
		}
	}
}
