package command

import (
	"strings"
)

type dfsCommand struct {
	name, usage, help string
}

// The FsShell commands forwarded verbatim to the Runner.
var dfsTable = []dfsCommand{
	{"appendToFile", "<localsrc> ... <dst>", "Appends the contents of all the given local files to the given dst file."},
	{"cat", "[-ignoreCrc] <src> ...", "Fetch all files that match the file pattern <src> and display their content on stdout."},
	{"checksum", "<src> ...", "Dump checksum information for files that match the file pattern <src> to stdout."},
	{"chgrp", "[-R] GROUP PATH...", "This is equivalent to -chown ... :GROUP ..."},
	{"chmod", "[-R] <MODE[,MODE]... | OCTALMODE> PATH...", "Changes permissions of a file."},
	{"chown", "[-R] [OWNER][:[GROUP]] PATH...", "Changes owner and group of a file."},
	{"copyFromLocal", "[-f] [-p] [-l] <localsrc> ... <dst>", "Identical to the -put command."},
	{"copyToLocal", "[-p] [-ignoreCrc] [-crc] <src> ... <localdst>", "Identical to the -get command."},
	{"count", "[-q] [-h] <path> ...", "Count the number of directories, files and bytes under the paths that match the specified file pattern."},
	{"cp", "[-f] [-p | -p[topax]] <src> ... <dst>", "Copy files that match the file pattern <src> to a destination."},
	{"createSnapshot", "<snapshotDir> [<snapshotName>]", "Create a snapshot on a directory."},
	{"deleteSnapshot", "<snapshotDir> <snapshotName>", "Delete a snapshot from a directory."},
	{"df", "[-h] [<path> ...]", "Shows the capacity, free and used space of the filesystem."},
	{"du", "[-s] [-h] <path> ...", "Show the amount of space, in bytes, used by the files that match the specified file pattern."},
	{"dus", "<path> ...", "(DEPRECATED) Same as 'du -s'."},
	{"expunge", "", "Empty the Trash."},
	{"get", "[-p] [-ignoreCrc] [-crc] <src> ... <localdst>", "Copy files that match the file pattern <src> to the local name."},
	{"getfacl", "[-R] <path>", "Displays the Access Control Lists (ACLs) of files and directories."},
	{"getfattr", "[-R] {-n name | -d} [-e en] <path>", "Displays the extended attribute names and values (if any) for a file or directory."},
	{"getmerge", "[-nl] <src> <localdst>", "Get all the files in the directories that match the source file pattern and merge and sort them to only one file on local fs."},
	{"ls", "[-d] [-h] [-R] [<path> ...]", "List the contents that match the specified file pattern."},
	{"lsr", "[<path> ...]", "(DEPRECATED) Same as 'ls -R'."},
	{"mkdir", "[-p] <path> ...", "Create a directory in specified location."},
	{"moveFromLocal", "<localsrc> ... <dst>", "Same as -put, except that the source is deleted after it's copied."},
	{"moveToLocal", "<src> <localdst>", "Not implemented yet."},
	{"mv", "<src> ... <dst>", "Move files that match the specified file pattern <src> to a destination <dst>."},
	{"put", "[-f] [-p] [-l] <localsrc> ... <dst>", "Copy files from the local file system into fs."},
	{"renameSnapshot", "<snapshotDir> <oldName> <newName>", "Rename a snapshot from oldName to newName."},
	{"rm", "[-f] [-r|-R] [-skipTrash] <src> ...", "Delete all files that match the specified file pattern."},
	{"rmdir", "[--ignore-fail-on-non-empty] <dir> ...", "Removes the directory entry specified by each directory argument, provided it is empty."},
	{"rmr", "<src> ...", "(DEPRECATED) Same as 'rm -r'."},
	{"setfacl", "[-R] [{-b|-k} {-m|-x <acl_spec>} <path>]|[--set <acl_spec> <path>]", "Sets Access Control Lists (ACLs) of files and directories."},
	{"setfattr", "{-n name [-v value] | -x name} <path>", "Sets an extended attribute name and value for a file or directory."},
	{"setrep", "[-R] [-w] <rep> <path> ...", "Set the replication level of a file."},
	{"stat", "[format] <path> ...", "Print statistics about the file/directory at <path> in the specified format."},
	{"tail", "[-f] <file>", "Show the last 1KB of the file."},
	{"test", "-[defsz] <path>", "Answer various questions about <path>, with result via exit status."},
	{"text", "[-ignoreCrc] <src> ...", "Takes a source file and outputs the file in text format."},
	{"touchz", "<path> ...", "Creates a file of zero length at <path> with current time as the timestamp of that <path>."},
}

// noArgCommands run with an empty argument list instead of showing help.
var noArgCommands = map[string]bool{"ls": true, "lsr": true}

func dfsCommands() []Descriptor {
	out := make([]Descriptor, 0, len(dfsTable)+1)
	for _, c := range dfsTable {
		c := c
		handler := func(e *Env) (string, error) {
			return e.Dispatcher.RunExternal(e, c.name, e.Fields())
		}
		if c.name == "setfacl" {
			handler = bulkSetfacl
		}
		out = append(out, Descriptor{
			Name:        c.name,
			Aliases:     []string{"hdfs dfs -" + c.name},
			Usage:       c.usage,
			Help:        c.help,
			AllowNoArgs: noArgCommands[c.name],
			Handler:     handler,
		})
	}
	out = append(out, Descriptor{
		Name:        "ll",
		Help:        "List the contents of the current directory.",
		AllowNoArgs: true,
		Handler: func(e *Env) (string, error) {
			return e.Dispatcher.RunExternal(e, "ls", nil)
		},
	})
	return out
}

// bulkSetfacl runs setfacl once per path when the first absolute path
// argument is a comma-separated list.  Individual results are dropped;
// a failure only stops the remaining paths when fail-fast is on.
func bulkSetfacl(e *Env) (string, error) {
	args := e.Fields()
	at := -1
	for i, a := range args {
		if strings.HasPrefix(a, "/") && strings.Contains(a, ",") {
			at = i
			break
		}
	}
	if at < 0 {
		return e.Dispatcher.RunExternal(e, "setfacl", args)
	}

	for _, p := range strings.Split(args[at], ",") {
		if p == "" {
			continue
		}
		one := append([]string(nil), args...)
		one[at] = p
		// Under fail-fast the first failing path ends the fan-out.
		if _, err := e.Dispatcher.RunExternal(e, "setfacl", one); err != nil {
			return "", err
		}
	}
	return "", nil
}
