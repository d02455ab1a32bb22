// Package completion completes remote paths in a partially typed
// command line.
package completion

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"hdfsshell/internal/dfs"
)

// Outcome says how a Result changes the input buffer.
type Outcome int

const (
	// NoCompletion leaves the buffer untouched.
	NoCompletion Outcome = iota
	// Extend inserts the single candidate at the cursor.
	Extend
	// List offers the candidates as alternatives.
	List
	// Separator inserts "/" to enter a typed directory.
	Separator
)

func (o Outcome) String() string {
	switch o {
	case Extend:
		return "extend"
	case List:
		return "list"
	case Separator:
		return "separator"
	}
	return "none"
}

// Result is the outcome of one completion request.
type Result struct {
	Outcome    Outcome
	Candidates []string
	// Cursor is the insertion position, or -1 for NoCompletion.
	Cursor int
}

var none = Result{Outcome: NoCompletion, Cursor: -1}

// Apply returns buffer with an Extend or Separator completion inserted
// and the new cursor position.  Other outcomes leave buffer unchanged.
func (r Result) Apply(buffer string) (string, int) {
	switch r.Outcome {
	case Extend, Separator:
		s := r.Candidates[0]
		return buffer[:r.Cursor] + s + buffer[r.Cursor:], r.Cursor + len(s)
	}
	return buffer, len(buffer)
}

// Source gives the completer the caller's view of the filesystem.
// *session.Session satisfies it.
type Source interface {
	CurrentDir(ctx context.Context) string
	FS(ctx context.Context) (dfs.FileSystem, error)
}

// Completer completes path arguments.  It holds no state of its own.
type Completer struct {
	src Source
}

// New returns a Completer reading through src.
func New(src Source) *Completer {
	return &Completer{src: src}
}

// Complete examines buffer[:cursor].  The first word is the command and
// is never completed; flags (-x) are never completed.
func (c *Completer) Complete(ctx context.Context, buffer string, cursor int) Result {
	if cursor <= 0 {
		return none
	}
	if cursor > len(buffer) {
		cursor = len(buffer)
	}
	tokens := strings.FieldsFunc(buffer[:cursor], isSeparator)
	if trailing := buffer[cursor-1]; isSeparator(rune(trailing)) {
		tokens = append(tokens, "")
	}
	if len(tokens) < 2 {
		return none
	}

	val := tokens[len(tokens)-1]
	if val == "" {
		val = dfs.CurrentDirMarker
	}
	if strings.HasPrefix(val, "-") {
		return none
	}

	fs, err := c.src.FS(ctx)
	if err != nil {
		return none
	}
	cwd := c.src.CurrentDir(ctx)

	var core, rest string
	if i := strings.LastIndex(val, dfs.Separator); i < 0 {
		core, rest = cwd, val
	} else {
		core = dfs.Resolve(cwd, val[:i+1])
		if len(val) > 1 {
			rest = val[i+1:]
		}
	}

	folderFound := val != dfs.CurrentDirMarker &&
		!strings.HasSuffix(val, dfs.Separator) &&
		dfs.IsDir(ctx, fs, dfs.Resolve(cwd, val))

	if core == "" || !dfs.Exists(ctx, fs, core) {
		return none
	}
	suggestions := suggest(ctx, fs, core, rest)
	common := commonPrefix(suggestions)
	everything := rest == "" || rest == dfs.CurrentDirMarker

	switch {
	case common != "" && common != rest:
		if !everything {
			common = common[len(rest):]
		}
		return Result{Outcome: Extend, Candidates: []string{common}, Cursor: cursor}

	case len(suggestions) > 1:
		out := make([]string, len(suggestions))
		for i, s := range suggestions {
			// Identical-looking entries would be merged by the line
			// editor; indent each one differently.
			if common != "" && common == rest {
				s = strings.Repeat(" ", i) + s
			}
			out[i] = strings.TrimSuffix(s, dfs.Separator)
		}
		return Result{Outcome: List, Candidates: out, Cursor: cursor}

	case folderFound:
		return Result{Outcome: Separator, Candidates: []string{dfs.Separator}, Cursor: cursor}

	case len(suggestions) == 1:
		s := suggestions[0]
		if !everything {
			s = strings.TrimPrefix(s, rest)
		}
		return Result{Outcome: Extend, Candidates: []string{s}, Cursor: cursor}
	}
	return none
}

func isSeparator(r rune) bool { return r == ' ' || r == ',' }

// suggest lists core, marking directories with a trailing separator.
// Unless rest selects everything, only names extending rest are kept.
func suggest(ctx context.Context, fs dfs.FileSystem, core, rest string) []string {
	entries, err := fs.ReadDir(ctx, core)
	if err != nil {
		return nil
	}
	everything := rest == "" || rest == dfs.CurrentDirMarker
	var out []string
	for _, e := range entries {
		name := e.Name
		if e.IsDir {
			name += dfs.Separator
		}
		if everything || (name != rest && strings.HasPrefix(name, rest)) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// commonPrefix trims whole runes so a shared leading byte of two
// different characters never ends up in the prefix.
func commonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}
	prefix := names[0]
	for _, n := range names[1:] {
		for !strings.HasPrefix(n, prefix) {
			_, size := utf8.DecodeLastRuneInString(prefix)
			prefix = prefix[:len(prefix)-size]
		}
		if prefix == "" {
			break
		}
	}
	return prefix
}
