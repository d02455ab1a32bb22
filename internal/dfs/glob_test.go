package dfs_test

import (
	"context"
	"testing"

	"hdfsshell/internal/dfs"
	"hdfsshell/internal/dfs/memfs"
)

func TestGlob(t *testing.T) {
	f := memfs.New()
	f.AddUser("alice")
	f.WriteFile("/user/alice/a.csv", nil, "alice")
	f.WriteFile("/user/alice/b.csv", nil, "alice")
	f.WriteFile("/user/alice/notes.txt", nil, "alice")
	f.WriteFile("/data/2024/01/x", nil, "alice")
	f.WriteFile("/data/2024/02/y", nil, "alice")

	fsys, err := f.Connect(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, pattern, cwd string
		want               []string
	}{
		{"dot resolves to home", ".", "", []string{"/user/alice"}},
		{"dot resolves to cwd", ".", "/data", []string{"/data"}},
		{"relative star", "*.csv", "/user/alice", []string{"/user/alice/a.csv", "/user/alice/b.csv"}},
		{"multi-level", "/data/2024/*/?", "", []string{"/data/2024/01/x", "/data/2024/02/y"}},
		{"no match", "/data/*/missing", "", nil},
		{"missing literal", "/nope", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dfs.Glob(context.Background(), fsys, tt.pattern, tt.cwd)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d matches, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i].Path != tt.want[i] {
					t.Errorf("match %d = %q, want %q", i, got[i].Path, tt.want[i])
				}
			}
		})
	}
}
