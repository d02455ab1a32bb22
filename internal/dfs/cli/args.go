package cli

import (
	"strings"

	"hdfsshell/internal/dfs"
)

// operandKind says which operands of a command name remote paths.
type operandKind int

const (
	remoteAll         operandKind = iota // every operand
	remoteAllButFirst                    // first operand is a mode, owner, count...
	remoteLast                           // sources are local
	remoteAllButLast                     // destination is local
	remoteFirst                          // trailing operands are names or expressions
	remoteNone
)

var operandKinds = map[string]operandKind{
	"chmod":          remoteAllButFirst,
	"chown":          remoteAllButFirst,
	"chgrp":          remoteAllButFirst,
	"setrep":         remoteAllButFirst,
	"truncate":       remoteAllButFirst,
	"put":            remoteLast,
	"copyFromLocal":  remoteLast,
	"moveFromLocal":  remoteLast,
	"appendToFile":   remoteLast,
	"setfacl":        remoteLast,
	"setfattr":       remoteLast,
	"getfattr":       remoteLast,
	"get":            remoteAllButLast,
	"copyToLocal":    remoteAllButLast,
	"moveToLocal":    remoteAllButLast,
	"getmerge":       remoteAllButLast,
	"find":           remoteFirst,
	"createSnapshot": remoteFirst,
	"deleteSnapshot": remoteFirst,
	"renameSnapshot": remoteFirst,
	"expunge":        remoteNone,
	"usage":          remoteNone,
	"help":           remoteNone,
}

// valueFlags take the following argument as their value.
var valueFlags = map[string]map[string]bool{
	"setfacl":  {"-m": true, "-x": true, "--set": true},
	"setfattr": {"-n": true, "-v": true, "-x": true},
	"getfattr": {"-n": true, "-e": true},
	"count":    {"-t": true},
	"find":     {"-name": true, "-iname": true},
}

// Absolutize returns args with every relative remote path operand of
// command resolved against cwd.  Flags, absolute paths, URIs and local
// operands are left alone.
func Absolutize(command string, args []string, cwd string) []string {
	if cwd == "" {
		return args
	}
	out := append([]string(nil), args...)

	var operands []int
	takesValue := valueFlags[command]
	for i := 0; i < len(out); i++ {
		a := out[i]
		if strings.HasPrefix(a, "-") && len(a) > 1 {
			if takesValue[a] {
				i++
			}
			if command == "find" {
				break
			}
			continue
		}
		operands = append(operands, i)
	}

	// Without a path the Hadoop client lists the home directory, not ours.
	if len(operands) == 0 && (command == "ls" || command == "lsr") {
		return append(out, cwd)
	}

	var remote []int
	switch kind := operandKinds[command]; {
	case command == "stat":
		remote = operands
		if len(operands) > 1 && strings.Contains(out[operands[0]], "%") {
			remote = operands[1:]
		}
	case kind == remoteAll:
		remote = operands
	case kind == remoteAllButFirst && len(operands) > 0:
		remote = operands[1:]
	case kind == remoteLast && len(operands) > 0:
		remote = operands[len(operands)-1:]
	case kind == remoteAllButLast && len(operands) > 0:
		remote = operands[:len(operands)-1]
	case kind == remoteFirst && len(operands) > 0:
		remote = operands[:1]
	}

	for _, i := range remote {
		if needsResolve(out[i]) {
			out[i] = dfs.Resolve(cwd, out[i])
		}
	}
	return out
}

func needsResolve(p string) bool {
	return p != "" && !dfs.IsAbs(p) && !dfs.HasScheme(p)
}
