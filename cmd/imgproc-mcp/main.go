package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ironsheep/imgproc-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "imgproc-mcp: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "imgproc-mcp %s\n", Version)
		fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
	}

	return &cli.App{
		Name:    "imgproc-mcp",
		Usage:   "MCP server for lens correction, remapping, distance transforms and text metrics",
		Version: Version,
		Description: "This server communicates via MCP protocol over stdin/stdout.\n" +
			"Configure it in your MCP client (e.g., Claude Desktop).",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level: debug, info, warn or error",
				EnvVars: []string{"IMAGE_MCP_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "write logs to this rotated file instead of stderr",
				EnvVars: []string{"IMAGE_MCP_LOG_FILE"},
			},
			&cli.IntFlag{
				Name:    "workers",
				Usage:   "goroutines per tool call; 0 uses GOMAXPROCS",
				EnvVars: []string{"IMAGE_MCP_WORKERS"},
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	logger, err := newLogger(c.String("log-level"), c.String("log-file"))
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	logger.Debugw("starting", "version", Version, "build_time", BuildTime, "commit", GitCommit)

	// stdout is reserved for the MCP protocol.
	srv := server.New(
		server.WithLogger(logger),
		server.WithWorkers(c.Int("workers")),
		server.WithVersion(Version),
	)
	if err := srv.Run(); err != nil {
		logger.Errorw("server error", "error", err)
		return err
	}
	return nil
}
