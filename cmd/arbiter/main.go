package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"github.com/viant/arbiter/internal/logging"
)

func main() {
	os.Exit(_main())
}

func _main() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		// buffered so a signal sent before we are ready is not lost
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		for sig := range c {
			logging.New("main").Info("received signal: ", sig)
			cancel()
		}
	}()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		logging.New("main").WithError(err).Error("arbiter failed")
		return 1
	}
	return 0
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "arbiter",
		Usage: "schedule agents around a ring of shared resources",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run every agent for a number of rounds",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "configuration URL (file://, mem://, ...)"},
					&cli.IntFlag{Name: "agents", Aliases: []string{"n"}, Usage: "number of agents"},
					&cli.IntFlag{Name: "rounds", Aliases: []string{"r"}, Usage: "rounds per agent, 0 runs until interrupted"},
					&cli.IntFlag{Name: "threshold", Usage: "starvation threshold, 0 disables the guard"},
					&cli.IntFlag{Name: "max-wait-rounds", Usage: "wait bound per request, 0 waits forever"},
					&cli.DurationFlag{Name: "think-time", Usage: "pause between rounds"},
					&cli.DurationFlag{Name: "use-time", Usage: "time an agent holds its resources"},
					&cli.StringFlag{Name: "log-level", Usage: "logrus level (trace, debug, info, warn, error)"},
					&cli.BoolFlag{Name: "log-json", Usage: "log as JSON"},
					&cli.BoolFlag{Name: "trace", Usage: "emit OpenTelemetry spans"},
					&cli.StringFlag{Name: "trace-output", Usage: "span output file, stdout when empty"},
					&cli.StringFlag{Name: "report", Usage: "URL to upload the final progress report to"},
				},
				Action: run,
			},
		},
	}
}
