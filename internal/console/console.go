// Package console runs the interactive shell loop on a terminal, the
// single-shot runner used when the process is given a command line, and
// the client that forwards lines to a running daemon.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/term"

	"hdfsshell/config"
	"hdfsshell/internal/command"
	"hdfsshell/internal/completion"
	sherr "hdfsshell/internal/errors"
	"hdfsshell/internal/prompt"
	"hdfsshell/internal/session"
	"hdfsshell/util"
)

// Options configures a Console.
type Options struct {
	Prompt   string // PS1 pattern; "" uses config.DefaultPrompt
	AppName  string
	Version  string
	NoBanner bool
}

// Console is one interactive shell bound to a session.
type Console struct {
	d         *command.Dispatcher
	sess      *session.Session
	completer *completion.Completer
	logger    *util.Logger
	opts      Options

	tpl      atomic.Pointer[prompt.Template]
	commands atomic.Int64
	history  atomic.Int64

	// tty is the line editor while a terminal loop runs.
	tty atomic.Pointer[term.Terminal]

	ready     chan struct{}
	readyOnce sync.Once
}

// New returns a Console.  The prompt is compiled immediately.
func New(d *command.Dispatcher, sess *session.Session, opts Options, logger *util.Logger) *Console {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	if opts.AppName == "" {
		opts.AppName = config.AppName
	}
	c := &Console{
		d:         d,
		sess:      sess,
		completer: completion.New(sess),
		logger:    logger.Named("console"),
		opts:      opts,
		ready:     make(chan struct{}),
	}
	c.SetPrompt(opts.Prompt)
	return c
}

// Ready is closed once the line editor and its completion callback are
// installed.  Non-terminal input closes it as soon as reading starts.
func (c *Console) Ready() <-chan struct{} { return c.ready }

func (c *Console) markReady() { c.readyOnce.Do(func() { close(c.ready) }) }

// SetPrompt recompiles the prompt from pattern.  It is safe to call
// while the loop runs; the next prompt uses the new pattern.
func (c *Console) SetPrompt(pattern string) {
	if pattern == "" {
		pattern = config.DefaultPrompt
	}
	ctx := context.Background()
	user := func() string {
		if u := c.sess.Principal(ctx); u != "" {
			return u
		}
		return c.opts.AppName
	}
	b := prompt.Bindings{
		User: user,
		Cwd:  func() string { return c.sess.CurrentDir(ctx) },
		ShortCwd: func() string {
			return prompt.ShortDir(c.sess.CurrentDir(ctx), path.Join(c.sess.UsersRoot(), user()))
		},
		IsRoot:       func() bool { return c.d.IsRoot(ctx, c.sess) },
		CommandCount: func() int { return int(c.commands.Load()) + 1 },
		HistoryCount: func() int { return int(c.history.Load()) + 1 },
	}
	c.tpl.Store(prompt.Compile(pattern, b, prompt.Options{
		AppName:    c.opts.AppName,
		AppVersion: c.opts.Version,
		AddReset:   true,
	}))
}

// PromptPattern returns the pattern in use.
func (c *Console) PromptPattern() string { return c.tpl.Load().Pattern() }

// Prompt renders the current prompt.
func (c *Console) Prompt() string { return c.tpl.Load().Render() }

// WatchPrompt follows the prompt setting of the config file
// until ctx is done.
func (c *Console) WatchPrompt(ctx context.Context, file string) error {
	return config.Watch(ctx, file, func() {
		cfg := config.New()
		cfg.Prompt = ""
		if err := config.LoadFile(cfg, file, true); err != nil {
			c.logger.Warn("reload %s: %v", file, err)
			return
		}
		if cfg.Prompt != "" && cfg.Prompt != c.PromptPattern() {
			c.SetPrompt(cfg.Prompt)
			c.logger.Verbose("prompt reloaded from %s", file)
		}
	})
}

// Run reads commands from in until EOF, exit, or ctx is done.  A
// terminal gets a line editor with path completion; anything else is
// read line by line without prompts.
func (c *Console) Run(ctx context.Context, in *os.File, out io.Writer) error {
	if !c.opts.NoBanner {
		fmt.Fprintln(out, Banner(c.opts.Version))
	}
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		return c.runTerminal(ctx, fd, in, out)
	}
	return c.RunLines(ctx, in, out, out)
}

// RunLines executes each line of r.  Results go to out, faults to errOut.
func (c *Console) RunLines(ctx context.Context, r io.Reader, out, errOut io.Writer) error {
	c.markReady()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), config.DefaultMaxLineSize)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if c.execute(ctx, sc.Text(), out, errOut) {
			return nil
		}
	}
	return sc.Err()
}

func (c *Console) runTerminal(ctx context.Context, fd int, in io.Reader, out io.Writer) error {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer term.Restore(fd, state) //nolint:errcheck

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, c.Prompt())
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetSize(w, h) //nolint:errcheck
	}
	t.AutoCompleteCallback = c.autoComplete
	c.tty.Store(t)
	defer c.tty.Store(nil)
	c.markReady()

	for ctx.Err() == nil {
		t.SetPrompt(c.Prompt())
		line, err := t.ReadLine()
		if err == io.EOF {
			fmt.Fprint(t, "\n")
			return nil
		}
		if err != nil {
			return err
		}

		// Commands such as edit need a cooked terminal.
		term.Restore(fd, state) //nolint:errcheck
		exit := c.execute(ctx, line, out, out)
		if _, err := term.MakeRaw(fd); err != nil {
			return fmt.Errorf("set terminal raw mode: %w", err)
		}
		if exit {
			return nil
		}
	}
	return nil
}

// execute runs one line and reports whether the shell should exit.
func (c *Console) execute(ctx context.Context, line string, out, errOut io.Writer) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	c.history.Add(1)
	result, err := c.d.Execute(ctx, c.sess, line, out, errOut)
	c.commands.Add(1)
	switch {
	case sherr.Is(err, sherr.ErrExit):
		return true
	case err != nil:
		fmt.Fprintln(errOut, err)
		c.logger.Debug("%q: %v", line, err)
		c.d.Metrics.RecordFault(err.Error())
	case result != "":
		fmt.Fprintln(out, result)
	}
	return false
}

// autoComplete is the line editor's tab handler.  pos counts runes.
func (c *Console) autoComplete(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' {
		return "", 0, false
	}
	cursor := len(string([]rune(line)[:pos]))
	r := c.completer.Complete(context.Background(), line, cursor)
	switch r.Outcome {
	case completion.Extend, completion.Separator:
		next, at := r.Apply(line)
		return next, utf8.RuneCountInString(next[:at]), true
	case completion.List:
		if t := c.tty.Load(); t != nil {
			fmt.Fprintln(t, strings.Join(r.Candidates, "  "))
		}
	}
	return "", 0, false
}
