package command

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	sherr "hdfsshell/internal/errors"
)

func shellCommands() []Descriptor {
	return []Descriptor{
		{
			Name:        "help",
			Usage:       "[<command>]",
			Help:        "List all commands, or describe one",
			AllowNoArgs: true,
			Handler:     help,
		},
		{
			Name:        "version",
			Help:        "Displays shell version",
			AllowNoArgs: true,
			Handler: func(e *Env) (string, error) {
				return e.Dispatcher.Opts.AppName + " " + e.Dispatcher.Opts.Version, nil
			},
		},
		{
			Name:        "stats",
			Help:        "Displays runtime statistics",
			AllowNoArgs: true,
			Handler:     func(e *Env) (string, error) { return e.Dispatcher.Metrics.JSON(), nil },
		},
		{
			Name:        "exit",
			Aliases:     []string{"quit"},
			Help:        "Exits the shell",
			AllowNoArgs: true,
			Handler:     func(*Env) (string, error) { return "", sherr.ErrExit },
		},
		{
			Name:    "script",
			Usage:   "<file>",
			Help:    "Parses the specified resource file and executes its commands",
			Handler: script,
		},
		{
			Name:        "edit",
			Usage:       "<file>",
			Help:        "Get file to local file system, edit and put it back to HDFS",
			AllowNoArgs: true,
			Handler:     edit,
		},
	}
}

func help(e *Env) (string, error) {
	if name := e.Args; name != "" {
		d, ok := e.Dispatcher.Registry.Get(name)
		if !ok {
			return "", sherr.Usagef("Unknown command %s", name)
		}
		return d.Description(), nil
	}

	var b strings.Builder
	for _, d := range e.Dispatcher.Registry.Commands() {
		fmt.Fprintf(&b, "%-16s %s\n", d.Name, d.Help)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// script runs each non-blank, non-comment line of a local file.  Result
// text is written to the output as it is produced; the first fault
// (fail-fast or otherwise) aborts the script.
func script(e *Env) (string, error) {
	name := firstField(e.Args)
	f, err := os.Open(name)
	if err != nil {
		return "", sherr.Usagef("Resource '%s' not found on disk", name)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		result, err := e.Dispatcher.Execute(e.Ctx, e.Session, line, e.Out, e.Err)
		if sherr.Is(err, sherr.ErrExit) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("%s:%d: %w", name, n, err)
		}
		if result != "" {
			fmt.Fprintln(e.Out, result)
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return "", nil
}
