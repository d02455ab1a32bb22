package dfs

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		cwd, p, want string
	}{
		{"/user/alice", "data", "/user/alice/data"},
		{"/user/alice", "/tmp/x/", "/tmp/x"},
		{"/user/alice", "..", "/user"},
		{"/user/alice", ".", "/user/alice"},
		{"", "data", "/data"},
		{"/", "../..", "/"},
	}
	for _, tt := range tests {
		if got := Resolve(tt.cwd, tt.p); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.cwd, tt.p, got, tt.want)
		}
	}
}

func TestHasScheme(t *testing.T) {
	tests := []struct {
		p    string
		want bool
	}{
		{"hdfs://nn:8020/data", true},
		{"file:///tmp/x", true},
		{"s3a://bucket/key", true},
		{"/abs/path", false},
		{"relative", false},
		{"://nothing", false},
		{"we ird://x", false},
	}
	for _, tt := range tests {
		if got := HasScheme(tt.p); got != tt.want {
			t.Errorf("HasScheme(%q) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
