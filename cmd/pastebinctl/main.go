// pastebinctl runs operational tasks against the pastebin database.
//
//	pastebinctl migrate up
//	pastebinctl migrate down --to 1
//	pastebinctl seed
//	pastebinctl sweep
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
