package config

import (
	"strings"
	"testing"
)

// TestValidate_ErrorMessages verifies that Validate returns actionable
// error messages with hints.
func TestValidate_ErrorMessages(t *testing.T) {
	t.Setenv("HADOOP_CONF_DIR", "")
	t.Setenv("HADOOP_HOME", "")
	tests := []struct {
		name    string
		cfg     Config
		wantSub string // substring expected in error
	}{
		{
			name:    "missing namenode has hint",
			cfg:     Config{Backend: BackendHDFS},
			wantSub: "hint:",
		},
		{
			name:    "unknown backend has hint",
			cfg:     Config{Backend: "ftp"},
			wantSub: "hint: use hdfs or mem",
		},
		{
			name:    "mode conflict",
			cfg:     Config{Daemon: true, Client: true, SocketPath: "/tmp/x"},
			wantSub: "--daemon and --client are mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should contain %q", err.Error(), tt.wantSub)
			}
		})
	}
}

// TestParseGatewaySpec_EdgeCases covers additional gateway specs.
func TestParseGatewaySpec_EdgeCases(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"user@host.with.dots:22", false},
		{"user@host-with-dashes", false},
		{"host:65536", true},
		{"user@", false}, // regex treats "user@" as hostname
		{":22", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, _, _, err := ParseGatewaySpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseGatewaySpec(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
