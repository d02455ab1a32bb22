package memfs

import (
	"context"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"hdfsshell/internal/dfs"
)

// Run executes one FsShell-style command against the tree.  Output and
// messages follow the Hadoop CLI closely enough for interactive use.
func (f *FS) Run(ctx context.Context, inv dfs.Invocation) int {
	user := inv.User
	if user == "" {
		user = f.defaultUser
	}
	r := &run{
		fs:   f,
		ctx:  ctx,
		cmd:  inv.Command,
		wd:   inv.WorkingDir,
		user: user,
		h:    &handle{fs: f, user: user},
		out:  dfs.Discard(inv.Stdout),
		errw: dfs.Discard(inv.Stderr),
	}
	if r.wd == "" {
		r.wd = r.h.Home()
	}

	handler, ok := commands[inv.Command]
	if !ok {
		fmt.Fprintf(r.errw, "-%s: Unknown command\n", inv.Command)
		return -1
	}
	return handler(r, inv.Args)
}

type run struct {
	fs   *FS
	ctx  context.Context
	cmd  string
	wd   string
	user string
	h    *handle
	out  io.Writer
	errw io.Writer
}

var commands map[string]func(*run, []string) int

func init() {
	commands = map[string]func(*run, []string) int{
		"ls":            (*run).ls,
		"lsr":           func(r *run, a []string) int { return r.ls(append([]string{"-R"}, a...)) },
		"cat":           (*run).cat,
		"text":          (*run).cat,
		"tail":          (*run).tail,
		"mkdir":         (*run).mkdir,
		"touchz":        (*run).touchz,
		"rm":            (*run).rm,
		"rmr":           func(r *run, a []string) int { return r.rm(append([]string{"-r"}, a...)) },
		"rmdir":         (*run).rmdir,
		"mv":            func(r *run, a []string) int { return r.copy(a, true) },
		"cp":            func(r *run, a []string) int { return r.copy(a, false) },
		"test":          (*run).test,
		"stat":          (*run).stat,
		"du":            (*run).du,
		"dus":           func(r *run, a []string) int { return r.du(append([]string{"-s"}, a...)) },
		"count":         (*run).count,
		"df":            (*run).df,
		"chmod":         (*run).chmod,
		"chown":         func(r *run, a []string) int { return r.chown(a, false) },
		"chgrp":         func(r *run, a []string) int { return r.chown(a, true) },
		"setrep":        (*run).setrep,
		"setfacl":       (*run).setfacl,
		"getfacl":       (*run).getfacl,
		"setfattr":      (*run).setfattr,
		"getfattr":      (*run).getfattr,
		"checksum":      (*run).checksum,
		"put":           func(r *run, a []string) int { return r.put(a, false, false) },
		"copyFromLocal": func(r *run, a []string) int { return r.put(a, false, false) },
		"moveFromLocal": func(r *run, a []string) int { return r.put(a, true, false) },
		"appendToFile":  func(r *run, a []string) int { return r.put(a, false, true) },
		"get":           (*run).get,
		"copyToLocal":   (*run).get,
		"expunge":       func(*run, []string) int { return 0 },
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func (r *run) fail(format string, args ...interface{}) int {
	fmt.Fprintf(r.errw, "%s: %s\n", r.cmd, fmt.Sprintf(format, args...))
	return 1
}

// splitFlags separates leading dash options from operands.
func splitFlags(args []string) (map[string]bool, []string) {
	flags := make(map[string]bool)
	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			i++
			break
		}
		if len(a) < 2 || a[0] != '-' {
			break
		}
		flags[a[1:]] = true
	}
	return flags, args[i:]
}

// expand resolves an operand to absolute paths, expanding globs.  A
// missing literal path still yields its resolved form (callers decide).
func (r *run) expand(arg string) []string {
	abs := dfs.Resolve(r.wd, arg)
	if !strings.ContainsAny(abs, "*?[") {
		return []string{abs}
	}
	matches, _ := dfs.Glob(r.ctx, r.h, abs, r.wd)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Path)
	}
	return out
}

// existing expands arg and reports missing paths.
func (r *run) existing(arg string) ([]string, bool) {
	paths := r.expand(arg)
	var out []string
	for _, p := range paths {
		if dfs.Exists(r.ctx, r.h, p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		r.fail("`%s': No such file or directory", arg)
		return nil, false
	}
	return out, true
}

func (r *run) walk(p string, fn func(p string, n *node)) {
	n, ok := r.fs.lookup(p)
	if !ok {
		return
	}
	fn(p, n)
	if n.dir {
		for _, name := range sortedChildren(n) {
			r.walk(path.Join(p, name), fn)
		}
	}
}

func formatEntry(st dfs.FileStatus, rep int) string {
	repl := "-"
	if !st.IsDir {
		repl = strconv.Itoa(rep)
	}
	return fmt.Sprintf("%s   %s %s %s %10d %s %s",
		st.Mode.String(), repl, st.Owner, st.Group, st.Size,
		st.ModTime.Format("2006-01-02 15:04"), st.Path)
}

// ── listing and reading ──────────────────────────────────────────────

func (r *run) ls(args []string) int {
	flags, operands := splitFlags(args)
	if len(operands) == 0 {
		operands = []string{r.wd}
	}
	code := 0
	for _, op := range operands {
		paths, ok := r.existing(op)
		if !ok {
			code = 1
			continue
		}
		r.fs.mu.RLock()
		for _, p := range paths {
			n, _ := r.fs.lookup(p)
			switch {
			case flags["R"]:
				r.walk(p, func(q string, m *node) {
					if q != p || !n.dir {
						fmt.Fprintln(r.out, formatEntry(status(q, m), m.rep))
					}
				})
			case n.dir && !flags["d"]:
				fmt.Fprintf(r.out, "Found %d items\n", len(n.children))
				for _, name := range sortedChildren(n) {
					child := n.children[name]
					fmt.Fprintln(r.out, formatEntry(status(path.Join(p, name), child), child.rep))
				}
			default:
				fmt.Fprintln(r.out, formatEntry(status(p, n), n.rep))
			}
		}
		r.fs.mu.RUnlock()
	}
	return code
}

func (r *run) cat(args []string) int {
	_, operands := splitFlags(args)
	code := 0
	for _, op := range operands {
		paths, ok := r.existing(op)
		if !ok {
			code = 1
			continue
		}
		r.fs.mu.RLock()
		for _, p := range paths {
			n, _ := r.fs.lookup(p)
			if n.dir {
				r.fail("`%s': Is a directory", p)
				code = 1
				continue
			}
			r.out.Write(n.data) //nolint:errcheck
		}
		r.fs.mu.RUnlock()
	}
	return code
}

func (r *run) tail(args []string) int {
	_, operands := splitFlags(args)
	if len(operands) != 1 {
		return r.fail("Illegal number of arguments")
	}
	data, err := r.fs.ReadFile(dfs.Resolve(r.wd, operands[0]))
	if err != nil {
		return r.fail("`%s': No such file or directory", operands[0])
	}
	if len(data) > 1024 {
		data = data[len(data)-1024:]
	}
	r.out.Write(data) //nolint:errcheck
	return 0
}

func (r *run) test(args []string) int {
	flags, operands := splitFlags(args)
	if len(flags) != 1 || len(operands) != 1 {
		return r.fail("No test flag given")
	}
	st, err := r.h.Stat(r.ctx, dfs.Resolve(r.wd, operands[0]))
	exists := err == nil
	var pass bool
	switch {
	case flags["e"]:
		pass = exists
	case flags["d"]:
		pass = exists && st.IsDir
	case flags["f"]:
		pass = exists && !st.IsDir
	case flags["s"]:
		pass = exists && st.Size > 0
	case flags["z"]:
		pass = exists && st.Size == 0
	default:
		return r.fail("Illegal option")
	}
	if pass {
		return 0
	}
	return 1
}

func (r *run) stat(args []string) int {
	format := "%y"
	operands := args
	if len(args) > 1 && strings.Contains(args[0], "%") {
		format, operands = args[0], args[1:]
	}
	code := 0
	for _, op := range operands {
		paths, ok := r.existing(op)
		if !ok {
			code = 1
			continue
		}
		for _, p := range paths {
			st, _ := r.h.Stat(r.ctx, p)
			fmt.Fprintln(r.out, formatStat(format, st))
		}
	}
	return code
}

func formatStat(format string, st dfs.FileStatus) string {
	kind := "regular file"
	if st.IsDir {
		kind = "directory"
	}
	return strings.NewReplacer(
		"%n", st.Name,
		"%F", kind,
		"%b", strconv.FormatInt(st.Size, 10),
		"%u", st.Owner,
		"%g", st.Group,
		"%a", strconv.FormatUint(uint64(st.Mode.Perm()), 8),
		"%y", st.ModTime.UTC().Format("2006-01-02 15:04:05"),
		"%Y", strconv.FormatInt(st.ModTime.UnixMilli(), 10),
	).Replace(format)
}

func (r *run) checksum(args []string) int {
	code := 0
	for _, op := range args {
		p := dfs.Resolve(r.wd, op)
		data, err := r.fs.ReadFile(p)
		if err != nil {
			code = r.fail("`%s': No such file or directory", op)
			continue
		}
		fmt.Fprintf(r.out, "%s\tCRC32\t%08x\n", p, crc32.ChecksumIEEE(data))
	}
	return code
}

// ── space accounting ─────────────────────────────────────────────────

func (r *run) du(args []string) int {
	flags, operands := splitFlags(args)
	if len(operands) == 0 {
		operands = []string{r.wd}
	}
	code := 0
	for _, op := range operands {
		paths, ok := r.existing(op)
		if !ok {
			code = 1
			continue
		}
		r.fs.mu.RLock()
		for _, p := range paths {
			n, _ := r.fs.lookup(p)
			if flags["s"] || !n.dir {
				size := r.size(p)
				fmt.Fprintf(r.out, "%d  %d  %s\n", size, size*3, p)
				continue
			}
			for _, name := range sortedChildren(n) {
				q := path.Join(p, name)
				size := r.size(q)
				fmt.Fprintf(r.out, "%d  %d  %s\n", size, size*3, q)
			}
		}
		r.fs.mu.RUnlock()
	}
	return code
}

func (r *run) size(p string) int64 {
	var total int64
	r.walk(p, func(_ string, n *node) { total += int64(len(n.data)) })
	return total
}

func (r *run) count(args []string) int {
	_, operands := splitFlags(args)
	if len(operands) == 0 {
		return r.fail("Illegal number of arguments")
	}
	code := 0
	for _, op := range operands {
		paths, ok := r.existing(op)
		if !ok {
			code = 1
			continue
		}
		r.fs.mu.RLock()
		for _, p := range paths {
			var dirs, files, bytes int64
			r.walk(p, func(_ string, n *node) {
				if n.dir {
					dirs++
				} else {
					files++
					bytes += int64(len(n.data))
				}
			})
			fmt.Fprintf(r.out, "%12d %12d %18d %s\n", dirs, files, bytes, p)
		}
		r.fs.mu.RUnlock()
	}
	return code
}

func (r *run) df(_ []string) int {
	r.fs.mu.RLock()
	used := r.size("/")
	r.fs.mu.RUnlock()
	const capacity = int64(1) << 40
	fmt.Fprintln(r.out, "Filesystem        Size     Used      Available  Use%")
	fmt.Fprintf(r.out, "memfs:///  %12d %8d %14d %4d%%\n", capacity, used, capacity-used, used*100/capacity)
	return 0
}

// ── mutation ─────────────────────────────────────────────────────────

func (r *run) mkdir(args []string) int {
	flags, operands := splitFlags(args)
	if len(operands) == 0 {
		return r.fail("Illegal number of arguments")
	}
	code := 0
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	for _, op := range operands {
		p := dfs.Resolve(r.wd, op)
		if _, exists := r.fs.lookup(p); exists && !flags["p"] {
			code = r.fail("`%s': File exists", op)
			continue
		}
		if err := r.fs.mkdirLocked(p, r.user, flags["p"]); err != nil {
			code = r.fail("%v", err)
		}
	}
	return code
}

func (r *run) touchz(args []string) int {
	if len(args) == 0 {
		return r.fail("Illegal number of arguments")
	}
	code := 0
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	for _, op := range args {
		p := dfs.Resolve(r.wd, op)
		if n, exists := r.fs.lookup(p); exists {
			if n.dir || len(n.data) > 0 {
				code = r.fail("`%s': Not a zero-length file", op)
			} else {
				n.mtime = r.fs.now()
			}
			continue
		}
		parent, ok := r.fs.lookup(path.Dir(p))
		if !ok || !parent.dir {
			code = r.fail("`%s': No such file or directory", path.Dir(p))
			continue
		}
		parent.children[path.Base(p)] = r.fs.newNode(path.Base(p), false, r.user)
	}
	return code
}

func (r *run) rm(args []string) int {
	flags, operands := splitFlags(args)
	recursive := flags["r"] || flags["R"]
	if len(operands) == 0 {
		return r.fail("Illegal number of arguments")
	}
	code := 0
	for _, op := range operands {
		paths := r.expand(op)
		r.fs.mu.Lock()
		found := false
		for _, p := range paths {
			n, ok := r.fs.lookup(p)
			if !ok {
				continue
			}
			found = true
			if p == "/" {
				code = r.fail("Cannot delete root directory")
				continue
			}
			if n.dir && !recursive {
				code = r.fail("`%s': Is a directory", op)
				continue
			}
			parent, _ := r.fs.lookup(path.Dir(p))
			delete(parent.children, path.Base(p))
			fmt.Fprintf(r.out, "Deleted %s\n", p)
		}
		r.fs.mu.Unlock()
		if !found && !flags["f"] {
			code = r.fail("`%s': No such file or directory", op)
		}
	}
	return code
}

func (r *run) rmdir(args []string) int {
	flags, operands := splitFlags(args)
	code := 0
	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	for _, op := range operands {
		p := dfs.Resolve(r.wd, op)
		n, ok := r.fs.lookup(p)
		switch {
		case !ok:
			code = r.fail("`%s': No such file or directory", op)
		case !n.dir:
			code = r.fail("`%s': Is not a directory", op)
		case len(n.children) > 0:
			if !flags["-ignore-fail-on-non-empty"] {
				code = r.fail("`%s': Directory is not empty", op)
			}
		default:
			parent, _ := r.fs.lookup(path.Dir(p))
			delete(parent.children, path.Base(p))
		}
	}
	return code
}

func (r *run) copy(args []string, move bool) int {
	flags, operands := splitFlags(args)
	if len(operands) < 2 {
		return r.fail("Illegal number of arguments")
	}
	dst := dfs.Resolve(r.wd, operands[len(operands)-1])
	var srcs []string
	for _, op := range operands[:len(operands)-1] {
		paths, ok := r.existing(op)
		if !ok {
			return 1
		}
		srcs = append(srcs, paths...)
	}

	r.fs.mu.Lock()
	defer r.fs.mu.Unlock()
	dstNode, dstExists := r.fs.lookup(dst)
	if len(srcs) > 1 && (!dstExists || !dstNode.dir) {
		return r.fail("`%s': Is not a directory", dst)
	}
	code := 0
	for _, src := range srcs {
		target := dst
		if dstExists && dstNode.dir {
			target = path.Join(dst, path.Base(src))
		}
		if target == src || strings.HasPrefix(target, src+"/") {
			code = r.fail("`%s' to `%s': is a subdirectory of itself", src, target)
			continue
		}
		if existing, ok := r.fs.lookup(target); ok && (move || !flags["f"] || existing.dir) {
			code = r.fail("`%s': File exists", target)
			continue
		}
		parent, ok := r.fs.lookup(path.Dir(target))
		if !ok || !parent.dir {
			code = r.fail("`%s': No such file or directory", path.Dir(target))
			continue
		}
		srcNode, _ := r.fs.lookup(src)
		clone := srcNode
		if !move {
			clone = r.fs.clone(srcNode, r.user)
		}
		clone.name = path.Base(target)
		parent.children[clone.name] = clone
		if move {
			srcParent, _ := r.fs.lookup(path.Dir(src))
			delete(srcParent.children, path.Base(src))
		}
	}
	return code
}

func (f *FS) clone(n *node, owner string) *node {
	c := f.newNode(n.name, n.dir, owner)
	c.data = append([]byte(nil), n.data...)
	c.mode = n.mode
	for name, child := range n.children {
		c.children[name] = f.clone(child, owner)
	}
	return c
}

// ── attributes ───────────────────────────────────────────────────────

// forEach applies fn to every operand (recursively with -R) under the
// write lock.
func (r *run) forEach(operands []string, recursive bool, fn func(n *node)) int {
	code := 0
	for _, op := range operands {
		paths, ok := r.existing(op)
		if !ok {
			code = 1
			continue
		}
		r.fs.mu.Lock()
		for _, p := range paths {
			if recursive {
				r.walk(p, func(_ string, n *node) { fn(n) })
			} else if n, ok := r.fs.lookup(p); ok {
				fn(n)
			}
		}
		r.fs.mu.Unlock()
	}
	return code
}

func (r *run) chmod(args []string) int {
	flags, operands := splitFlags(args)
	if len(operands) < 2 {
		return r.fail("Illegal number of arguments")
	}
	mode, err := strconv.ParseUint(operands[0], 8, 32)
	if err != nil || mode > 0o7777 {
		return r.fail("chmod : mode '%s' does not match the expected pattern.", operands[0])
	}
	return r.forEach(operands[1:], flags["R"], func(n *node) { n.mode = os.FileMode(mode) })
}

func (r *run) chown(args []string, groupOnly bool) int {
	flags, operands := splitFlags(args)
	if len(operands) < 2 {
		return r.fail("Illegal number of arguments")
	}
	owner, group := operands[0], ""
	if groupOnly {
		owner, group = "", operands[0]
	} else if i := strings.IndexAny(owner, ":."); i >= 0 {
		owner, group = owner[:i], owner[i+1:]
	}
	return r.forEach(operands[1:], flags["R"], func(n *node) {
		if owner != "" {
			n.owner = owner
		}
		if group != "" {
			n.group = group
		}
	})
}

func (r *run) setrep(args []string) int {
	flags, operands := splitFlags(args)
	if len(operands) < 2 {
		return r.fail("Illegal number of arguments")
	}
	rep, err := strconv.Atoi(operands[0])
	if err != nil || rep < 1 {
		return r.fail("Illegal replication, a positive integer expected")
	}
	return r.forEach(operands[1:], flags["R"], func(n *node) {
		if !n.dir {
			n.rep = rep
		}
	})
}

func (r *run) setfacl(args []string) int {
	if len(args) < 2 {
		return r.fail("<path> is missing")
	}
	target := args[len(args)-1]
	var op, spec string
	switch args[0] {
	case "-b", "-k":
		op = "clear"
	case "-m", "-x", "--set":
		if len(args) < 3 {
			return r.fail("Missing either <acl_spec> or <path>")
		}
		op, spec = args[0], args[1]
	default:
		return r.fail("Illegal option %s", args[0])
	}
	return r.forEach([]string{target}, false, func(n *node) {
		switch op {
		case "clear":
			n.acl = nil
		case "--set":
			n.acl = strings.Split(spec, ",")
		case "-m":
			n.acl = append(n.acl, strings.Split(spec, ",")...)
		case "-x":
			drop := make(map[string]bool)
			for _, e := range strings.Split(spec, ",") {
				drop[e] = true
			}
			kept := n.acl[:0]
			for _, e := range n.acl {
				name := e
				if i := strings.LastIndex(e, ":"); i > 0 {
					name = e[:i]
				}
				if !drop[name] && !drop[e] {
					kept = append(kept, e)
				}
			}
			n.acl = kept
		}
	})
}

func (r *run) getfacl(args []string) int {
	_, operands := splitFlags(args)
	if len(operands) != 1 {
		return r.fail("<path> is missing")
	}
	paths, ok := r.existing(operands[0])
	if !ok {
		return 1
	}
	r.fs.mu.RLock()
	defer r.fs.mu.RUnlock()
	for _, p := range paths {
		n, _ := r.fs.lookup(p)
		perm := n.mode.Perm().String()
		fmt.Fprintf(r.out, "# file: %s\n# owner: %s\n# group: %s\n", p, n.owner, n.group)
		fmt.Fprintf(r.out, "user::%s\n", perm[1:4])
		for _, e := range n.acl {
			fmt.Fprintln(r.out, e)
		}
		fmt.Fprintf(r.out, "group::%s\nother::%s\n\n", perm[4:7], perm[7:10])
	}
	return 0
}

func (r *run) setfattr(args []string) int {
	var name, value, remove string
	i := 0
	for ; i+1 < len(args); i += 2 {
		switch args[i] {
		case "-n":
			name = args[i+1]
		case "-v":
			value = args[i+1]
		case "-x":
			remove = args[i+1]
		default:
			i = len(args)
		}
	}
	if i != len(args)-1 || (name == "" && remove == "") {
		return r.fail("Must specify '-n name' or '-x name' option and <path>")
	}
	return r.forEach([]string{args[i]}, false, func(n *node) {
		if n.xattrs == nil {
			n.xattrs = make(map[string]string)
		}
		if remove != "" {
			delete(n.xattrs, remove)
			return
		}
		n.xattrs[name] = value
	})
}

func (r *run) getfattr(args []string) int {
	var name string
	dump := false
	i := 0
	for ; i < len(args)-1; i++ {
		switch args[i] {
		case "-d":
			dump = true
		case "-n":
			i++
			name = args[i]
		case "-R":
		}
	}
	if i != len(args)-1 || (!dump && name == "") {
		return r.fail("Must specify '-n name' or '-d' option and <path>")
	}
	paths, ok := r.existing(args[i])
	if !ok {
		return 1
	}
	r.fs.mu.RLock()
	defer r.fs.mu.RUnlock()
	for _, p := range paths {
		n, _ := r.fs.lookup(p)
		fmt.Fprintf(r.out, "# file: %s\n", p)
		keys := make([]string, 0, len(n.xattrs))
		for k := range n.xattrs {
			if dump || k == name {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(r.out, "%s=\"%s\"\n", k, n.xattrs[k])
		}
	}
	return 0
}

// ── local transfer ───────────────────────────────────────────────────

func (r *run) put(args []string, move, appendTo bool) int {
	flags, operands := splitFlags(args)
	if len(operands) < 2 {
		return r.fail("Illegal number of arguments")
	}
	dst := dfs.Resolve(r.wd, operands[len(operands)-1])
	srcs := operands[:len(operands)-1]

	code := 0
	for _, src := range srcs {
		data, err := os.ReadFile(src)
		if err != nil {
			code = r.fail("`%s': No such file or directory", src)
			continue
		}
		r.fs.mu.Lock()
		target := dst
		if n, ok := r.fs.lookup(dst); ok && n.dir {
			target = path.Join(dst, path.Base(src))
		}
		existing, exists := r.fs.lookup(target)
		parent, parentOK := r.fs.lookup(path.Dir(target))
		switch {
		case !parentOK || !parent.dir:
			code = r.fail("`%s': No such file or directory", path.Dir(target))
		case exists && existing.dir:
			code = r.fail("`%s': Is a directory", target)
		case exists && appendTo:
			existing.data = append(existing.data, data...)
			existing.mtime = r.fs.now()
		case exists && !flags["f"]:
			code = r.fail("`%s': File exists", target)
		default:
			n := r.fs.newNode(path.Base(target), false, r.user)
			n.data = data
			parent.children[n.name] = n
			if move {
				os.Remove(src) //nolint:errcheck
			}
		}
		r.fs.mu.Unlock()
	}
	return code
}

func (r *run) get(args []string) int {
	_, operands := splitFlags(args)
	if len(operands) != 2 {
		return r.fail("Illegal number of arguments")
	}
	src := dfs.Resolve(r.wd, operands[0])
	data, err := r.fs.ReadFile(src)
	if err != nil {
		return r.fail("`%s': No such file or directory", operands[0])
	}
	dst := operands[1]
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		dst = path.Join(dst, path.Base(src))
	}
	if _, err := os.Stat(dst); err == nil {
		return r.fail("`%s': File exists", dst)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return r.fail("%v", err)
	}
	return 0
}
