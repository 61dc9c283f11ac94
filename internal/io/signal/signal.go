// Package signal turns process signals into context cancellation and stats
// requests.
package signal

import (
	"context"
	"os"
	gosignal "os/signal"
	"syscall"
	"time"

	"github.com/mimecast/logprobe/internal/constants"
	"github.com/mimecast/logprobe/internal/io/dlog"
)

// InterruptChWithCancel returns a channel for "please print stats" signalling
// on SIGUSR1. Termination signals cancel the context instead of killing the
// process. If shutdown takes longer than constants.ForceExitTimeout, or a
// second termination signal arrives, the process exits right away.
func InterruptChWithCancel(ctx context.Context, cancel context.CancelFunc) <-chan string {
	sigTermCh := make(chan os.Signal, 10)
	gosignal.Notify(sigTermCh, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	sigStatsCh := make(chan os.Signal, 10)
	gosignal.Notify(sigStatsCh, syscall.SIGUSR1)

	return interruptCh(ctx, cancel, sigTermCh, sigStatsCh, func() { os.Exit(constants.ExitOK) })
}

func interruptCh(ctx context.Context, cancel context.CancelFunc, sigTermCh,
	sigStatsCh <-chan os.Signal, exit func()) <-chan string {

	statsCh := make(chan string, 1)

	go func() {
		for {
			select {
			case sig := <-sigStatsCh:
				select {
				case statsCh <- "Stats requested by " + sig.String():
				default:
					// A request is already pending.
				}
			case sig := <-sigTermCh:
				dlog.Client.Debug("Received signal", sig)
				cancel()
				forceExit(sigTermCh, exit)
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return statsCh
}

func forceExit(sigTermCh <-chan os.Signal, exit func()) {
	go func() {
		select {
		case <-sigTermCh:
		case <-time.After(constants.ForceExitTimeout):
		}
		exit()
	}()
}

// NoCh doesn't listen on a signal.
func NoCh(ctx context.Context) <-chan string {
	return make(chan string)
}
