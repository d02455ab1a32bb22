package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"hdfsshell/config"
	"hdfsshell/internal/command"
	sherr "hdfsshell/internal/errors"
	"hdfsshell/internal/session"
)

// RunOnce joins args into one command line and executes it.  When the
// first argument is the script keyword, fail-fast is switched on so
// the first failing command aborts the script.  The returned error is
// the fault, if any; sherr.ExitCode maps it to the process status.
func RunOnce(ctx context.Context, d *command.Dispatcher, sess *session.Session, args []string, out, errOut io.Writer) error {
	if len(args) > 0 && args[0] == config.ScriptKeyword {
		sess.SetFailFast(true)
	}
	result, err := d.Execute(ctx, sess, strings.Join(args, " "), out, errOut)
	if sherr.Is(err, sherr.ErrExit) {
		return nil
	}
	if err != nil {
		return err
	}
	if result != "" {
		fmt.Fprintln(out, result)
	}
	return nil
}
