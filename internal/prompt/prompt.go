// Package prompt renders bash-style PS1 patterns.
//
// A Template is compiled once: sequences that never change between
// renders (\e, \n, \s, \v ...) are substituted up front.  Render then
// scans the remaining pattern for the dynamic sequences
//
//	\u  user            \h  short host name    \d  "Mon Jan 02"
//	\w  working dir     \H  full host name     \t  24h HH:MM:SS
//	\W  short dir       \#  command number     \T  12h HH:MM:SS
//	\$  # for root      \!  history number     \@  12h HH:MM
//	                                           \A  24h HH:MM
//
// and replaces each with its binding's value at call time.
package prompt

import (
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Reset is appended to a rendered prompt that does not already end
// with a colour reset.
const Reset = "\033[37;0;39m"

const resetSuffix = ";39m"

// Time layouts.
const (
	layoutDate      = "Mon Jan 02"
	layout24Seconds = "15:04:05"
	layout12Seconds = "3:04:05 PM"
	layout12        = "3:04 PM"
	layout24        = "15:04"
)

// Bindings supply the live values of dynamic sequences.  A nil binding
// renders as the empty string, except IsRoot (nil renders "$") and the
// host bindings, which fall back to the environment and the resolver.
type Bindings struct {
	User         func() string
	Cwd          func() string
	ShortCwd     func() string
	IsRoot       func() bool
	ShortHost    func() string
	Host         func() string
	CommandCount func() int
	HistoryCount func() int
}

// Options configures compilation.
type Options struct {
	AppName    string
	AppVersion string
	// AddReset appends Reset unless the output already ends with one.
	AddReset bool
	// Reset replaces the default reset sequence.
	Reset string
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Getenv defaults to os.Getenv; used for COMPUTERNAME and HOSTNAME.
	Getenv func(string) string
}

// Template is a compiled prompt pattern.  It is safe for concurrent use.
type Template struct {
	source   string
	compiled string
	bindings Bindings
	opts     Options

	hostOnce  sync.Once
	shortHost string
	fqdnOnce  sync.Once
	fqdn      string
}

// Compile substitutes the static sequences of pattern.
func Compile(pattern string, b Bindings, opts Options) *Template {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}
	if opts.Reset == "" {
		opts.Reset = Reset
	}
	r := strings.NewReplacer(
		`\[`, "",
		`\]`, "",
	)
	p := r.Replace(pattern)
	// Some prompt generators emit \\$ for \$.
	p = strings.ReplaceAll(p, `\\$`, `\$`)
	p = strings.ReplaceAll(p, `\e`, "\033")
	p = strings.ReplaceAll(p, `\s`, opts.AppName)
	p = strings.ReplaceAll(p, `\a`, "\a")
	p = strings.ReplaceAll(p, `\V`, opts.AppVersion)
	p = strings.ReplaceAll(p, `\v`, opts.AppVersion)
	p = strings.ReplaceAll(p, `\n`, "\n")
	p = strings.ReplaceAll(p, `\r`, "\r")

	return &Template{source: pattern, compiled: p, bindings: b, opts: opts}
}

// Pattern returns the pattern the template was compiled from.
func (t *Template) Pattern() string { return t.source }

// Compiled returns the pattern after static substitution.
func (t *Template) Compiled() string { return t.compiled }

// Render evaluates the dynamic sequences.  The clock is read at most
// once, and only if a time sequence is present.
func (t *Template) Render() string {
	var (
		b       strings.Builder
		now     time.Time
		haveNow bool
	)
	clock := func() time.Time {
		if !haveNow {
			now, haveNow = t.opts.Clock(), true
		}
		return now
	}

	p := t.compiled
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c != '\\' || i+1 == len(p) {
			b.WriteByte(c)
			continue
		}
		next := p[i+1]
		if next == '\\' {
			// Escaped backslash; folded after the scan.
			b.WriteString(`\\`)
			i++
			continue
		}
		v, ok := t.dynamic(next, clock)
		if !ok {
			b.WriteByte(c)
			continue
		}
		b.WriteString(v)
		i++
	}

	out := strings.ReplaceAll(b.String(), `\\`, `\`)
	if t.opts.AddReset && !strings.HasSuffix(out, resetSuffix) {
		out += t.opts.Reset
	}
	return out
}

func (t *Template) dynamic(seq byte, clock func() time.Time) (string, bool) {
	b := t.bindings
	switch seq {
	case '$':
		if b.IsRoot != nil && b.IsRoot() {
			return "#", true
		}
		return "$", true
	case 'u':
		return str(b.User), true
	case 'w':
		return str(b.Cwd), true
	case 'W':
		return str(b.ShortCwd), true
	case '#':
		return num(b.CommandCount), true
	case '!':
		return num(b.HistoryCount), true
	case 'h':
		return t.hostShort(), true
	case 'H':
		return t.hostFull(), true
	case 'd':
		return clock().Format(layoutDate), true
	case 't':
		return clock().Format(layout24Seconds), true
	case 'T':
		return clock().Format(layout12Seconds), true
	case '@':
		return clock().Format(layout12), true
	case 'A':
		return clock().Format(layout24), true
	}
	return "", false
}

// ── host names ───────────────────────────────────────────────────────

func (t *Template) hostShort() string {
	if t.bindings.ShortHost != nil {
		return t.bindings.ShortHost()
	}
	if v := t.opts.Getenv("COMPUTERNAME"); v != "" {
		return v
	}
	if v := t.opts.Getenv("HOSTNAME"); v != "" {
		return v
	}
	t.hostOnce.Do(func() {
		t.shortHost = "unknownHost"
		if h, err := os.Hostname(); err == nil {
			t.shortHost, _, _ = strings.Cut(h, ".")
		}
	})
	return t.shortHost
}

func (t *Template) hostFull() string {
	if t.bindings.Host != nil {
		return t.bindings.Host()
	}
	t.fqdnOnce.Do(func() { t.fqdn = lookupFQDN() })
	return t.fqdn
}

// lookupFQDN returns the canonical name of the local host.
func lookupFQDN() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknownHost"
	}
	addrs, err := net.LookupHost(h)
	if err != nil || len(addrs) == 0 {
		return h
	}
	names, err := net.LookupAddr(addrs[0])
	if err != nil || len(names) == 0 {
		return h
	}
	return strings.TrimSuffix(names[0], ".")
}

func str(f func() string) string {
	if f == nil {
		return ""
	}
	return f()
}

func num(f func() int) string {
	if f == nil {
		return ""
	}
	return strconv.Itoa(f())
}

// ShortDir abbreviates the home directory prefix of cwd to "~".
func ShortDir(cwd, home string) string {
	if home == "" || home == "/" {
		return cwd
	}
	if cwd == home {
		return "~"
	}
	if strings.HasPrefix(cwd, home+"/") {
		return "~" + cwd[len(home):]
	}
	return cwd
}
