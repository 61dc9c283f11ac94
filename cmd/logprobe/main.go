// Package main provides the LogProbe command-line tool. LogProbe connects to
// a log emitting server, reads its stream of null delimited tagged records
// and displays them, optionally filtered by tag.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mimecast/logprobe/internal/clients"
	"github.com/mimecast/logprobe/internal/clients/handlers"
	"github.com/mimecast/logprobe/internal/color"
	"github.com/mimecast/logprobe/internal/config"
	"github.com/mimecast/logprobe/internal/constants"
	"github.com/mimecast/logprobe/internal/filter"
	"github.com/mimecast/logprobe/internal/io/dlog"
	"github.com/mimecast/logprobe/internal/io/signal"
	"github.com/mimecast/logprobe/internal/io/stream"
	"github.com/mimecast/logprobe/internal/metrics"
	"github.com/mimecast/logprobe/internal/profiling"
	"github.com/mimecast/logprobe/internal/protocol"
	"github.com/mimecast/logprobe/internal/ssh"
	"github.com/mimecast/logprobe/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func warn(message string) {
	dlog.Client.Warn(message)
}

func run(arguments []string) int {
	args, err := config.ParseArgs(arguments, warn)
	if err != nil {
		if config.ExitCode(err) == constants.ExitConfigError {
			dlog.Client.Error(err)
		}
		fmt.Println(config.Usage)
		return config.ExitCode(err)
	}
	if args.DisplayVersion {
		version.Print()
		return constants.ExitOK
	}

	if err := config.Setup(args, warn); err != nil {
		dlog.Client.Error(err)
		return config.ExitCode(err)
	}
	color.Setup(os.Stdout, config.Client.TermColorsEnable)
	if err := dlog.Setup(config.Client.LogLevel, os.Stdout); err != nil {
		dlog.Client.Error(err)
		return constants.ExitConfigError
	}
	version.Print()
	dlog.Client.Debug("Args", args.String())

	profiler, err := profiling.Start(profiling.Config{
		CPUProfile:  args.CPUProfile,
		MemProfile:  args.MemProfile,
		ProfileDir:  args.ProfileDir,
		CommandName: "logprobe",
	})
	if err != nil {
		dlog.Client.Error("Unable to start profiling", err)
		return constants.ExitConfigError
	}
	defer profiler.Stop()

	decoder, err := protocol.NewDecoder(config.Client.Encoding)
	if err != nil {
		dlog.Client.Error(err)
		return constants.ExitConfigError
	}
	tagFilter := filter.New(config.Client.Include, config.Client.Exclude)
	dlog.Client.Debug(tagFilter.String(), "encoding", decoder.String())

	var m *metrics.Metrics
	if config.Client.MetricsAddr != "" {
		m = metrics.New()
		server, err := metrics.Serve(config.Client.MetricsAddr, m)
		if err != nil {
			dlog.Client.Error("Unable to serve metrics", err)
			return constants.ExitConfigError
		}
		defer server.Shutdown()
		dlog.Client.Info("Serving metrics", server.Addr())
	}

	var dialer stream.Dialer
	if config.Client.SSH.Server != "" {
		sshDialer, err := ssh.NewDialer(config.Client.SSH)
		if err != nil {
			dlog.Client.Error(err)
			return constants.ExitConfigError
		}
		dlog.Client.Info("Connecting through jump host", sshDialer.Server())
		dialer = sshDialer
	}

	handler, err := handlers.NewRecordHandler(handlers.Options{
		Decoder:       decoder,
		Filter:        tagFilter,
		Formatted:     config.Client.Format,
		LegacyFraming: config.Client.LegacyFraming,
		Metrics:       m,
	})
	if err != nil {
		dlog.Client.Error(err)
		return constants.ExitConfigError
	}

	client := clients.NewProbeClient(clients.ProbeOptions{
		Endpoint:   config.Client.Endpoint.String(),
		BufferSize: config.Client.BufferSize,
		Dialer:     dialer,
		Handler:    handler,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return client.Start(ctx, signal.InterruptChWithCancel(ctx, cancel))
}
