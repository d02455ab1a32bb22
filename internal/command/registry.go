// Package command maps shell command lines to handlers.  Filesystem
// commands are forwarded to a dfs.Runner; context commands (cd, su,
// set...) act on the session.
package command

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"hdfsshell/internal/session"
)

// Env is everything a handler sees for one invocation.
type Env struct {
	Ctx        context.Context
	Session    *session.Session
	Dispatcher *Dispatcher
	Name       string // descriptor name
	Args       string // argument text, trimmed
	Out        io.Writer
	Err        io.Writer
}

// Fields splits the argument text on whitespace.
func (e *Env) Fields() []string { return strings.Fields(e.Args) }

// Handler runs a command.  The returned text is the command's result
// line; a UsageError is rendered as text, any other error is a fault.
type Handler func(e *Env) (string, error)

// Descriptor describes one command.  It is immutable after registration.
type Descriptor struct {
	Name    string
	Aliases []string
	Usage   string // argument synopsis, e.g. "[-p] <path> ..."
	Help    string
	// AllowNoArgs lets the handler run with empty arguments; otherwise
	// an empty argument string yields the help text.
	AllowNoArgs bool
	Handler     Handler
}

// Description renders the help shown for a bare invocation.
func (d *Descriptor) Description() string {
	if d.Usage == "" {
		return d.Name + ": " + d.Help
	}
	return fmt.Sprintf("%s %s:\n\t%s", d.Name, d.Usage, d.Help)
}

// Registry is a concurrency-safe command table.  Names and aliases may
// contain spaces ("hdfs dfs -ls").
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]*Descriptor
	maxWords int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Descriptor), maxWords: 1}
}

// Register adds d under its name and aliases.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" || d.Handler == nil {
		return fmt.Errorf("register: command needs a name and a handler")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{d.Name}, d.Aliases...)
	for _, k := range keys {
		if _, dup := r.byName[k]; dup {
			return fmt.Errorf("register %s: %q already registered", d.Name, k)
		}
	}
	desc := &d
	for _, k := range keys {
		r.byName[k] = desc
		if n := len(strings.Fields(k)); n > r.maxWords {
			r.maxWords = n
		}
	}
	return nil
}

// MustRegister is Register that panics on conflict.
func (r *Registry) MustRegister(ds ...Descriptor) {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

// Lookup finds the command that line starts with, preferring the
// longest multi-word match, and returns the remaining argument text.
func (r *Registry) Lookup(line string) (*Descriptor, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	words := strings.Fields(line)
	n := r.maxWords
	if n > len(words) {
		n = len(words)
	}
	for ; n > 0; n-- {
		if d, ok := r.byName[strings.Join(words[:n], " ")]; ok {
			return d, skipWords(line, n), true
		}
	}
	return nil, "", false
}

// Get returns the descriptor registered under name or alias.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// Commands returns the distinct descriptors sorted by name.
func (r *Registry) Commands() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*Descriptor]bool)
	var out []*Descriptor
	for _, d := range r.byName {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns every name and single-word alias, sorted.  The console
// completes command names from it.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for k := range r.byName {
		if !strings.Contains(k, " ") {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func skipWords(s string, n int) string {
	for i := 0; i < n; i++ {
		s = strings.TrimLeft(s, " \t")
		if j := strings.IndexAny(s, " \t"); j >= 0 {
			s = s[j:]
		} else {
			s = ""
		}
	}
	return strings.TrimSpace(s)
}
