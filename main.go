// HDFS-shell - an interactive shell for the Hadoop distributed filesystem.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hdfsshell/cmd"
	sherr "hdfsshell/internal/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "hdfs-shell: %v\n", err)
		cancel()
		os.Exit(sherr.ExitCode(err))
	}
}
