package command

import (
	"regexp"
	"strings"

	sherr "hdfsshell/internal/errors"
)

var userSeparators = regexp.MustCompile(`[\s,]+`)

// The switches accepted by set, and the session flag each controls.
var switches = map[string]func(e *Env, on bool){
	"showResultCode": func(e *Env, on bool) { e.Session.SetShowExitCode(on) },
	"failOnError":    func(e *Env, on bool) { e.Session.SetFailFast(on) },
}

func contextCommands() []Descriptor {
	return []Descriptor{
		{
			Name:        "pwd",
			Help:        "Shows current dir",
			AllowNoArgs: true,
			Handler:     func(e *Env) (string, error) { return e.Session.CurrentDir(e.Ctx), nil },
		},
		{
			Name:        "cd",
			Usage:       "[<path>]",
			Help:        "Changes current dir",
			AllowNoArgs: true,
			Handler:     cd,
		},
		{
			Name:        "su",
			Usage:       "<username>",
			Help:        "Changes current active user [*experimental*]",
			AllowNoArgs: true,
			Handler: func(e *Env) (string, error) {
				return "", e.Session.SwitchPrincipal(e.Ctx, firstField(e.Args))
			},
		},
		{
			Name:        "whoami",
			Help:        "Print effective username",
			AllowNoArgs: true,
			Handler:     func(e *Env) (string, error) { return e.Session.Principal(e.Ctx), nil },
		},
		{
			Name:        "groups",
			Usage:       "[<username> ...]",
			Help:        "Get groups for user",
			AllowNoArgs: true,
			Handler:     groups,
		},
		{
			Name:        "set",
			Usage:       "showResultCodeON|showResultCodeOFF|failOnErrorON|failOnErrorOFF",
			Help:        "Set switch value",
			AllowNoArgs: true,
			Handler:     set,
		},
	}
}

func cd(e *Env) (string, error) {
	target := firstField(e.Args)
	err := e.Session.ChangeDirectory(e.Ctx, target)
	switch {
	case err == nil:
		return "", nil
	case sherr.Is(err, sherr.ErrNoSuchPath):
		if target == "" {
			target = e.Session.HomeDir(e.Ctx)
		}
		return "-shell: cd: " + target + " No such file or directory", nil
	default:
		return "Change directory failed! " + err.Error(), nil
	}
}

func groups(e *Env) (string, error) {
	names := e.Args
	if names == "" {
		names = e.Session.Principal(e.Ctx)
	}
	var lines []string
	for _, user := range userSeparators.Split(names, -1) {
		if user == "" {
			continue
		}
		lines = append(lines, user+" : "+strings.Join(e.Dispatcher.groupsOf(e.Ctx, user), " "))
	}
	return strings.Join(lines, "\n"), nil
}

func set(e *Env) (string, error) {
	sw := firstField(e.Args)
	if sw == "" {
		return "possible parameters .... showResultCodeON/showResultCodeOFF", nil
	}
	for name, apply := range switches {
		if strings.HasPrefix(sw, name) {
			apply(e, strings.EqualFold(sw, name+"ON"))
			return sw + " has been set", nil
		}
	}
	return "Unknown switch " + sw, nil
}

func firstField(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}
