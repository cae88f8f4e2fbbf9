package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/loom-ui/loom/internal/config"
	"github.com/loom-ui/loom/pkg/dom"
	"github.com/loom-ui/loom/pkg/reactive"
	"github.com/loom-ui/loom/pkg/server"
	"github.com/loom-ui/loom/pkg/styles"
	"github.com/loom-ui/loom/pkg/vdom"
)

func devCmd() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Serve the demo application",
		Long: `Start a development server: server-rendered first paint on /,
a WebSocket patch stream on /ws, and Prometheus metrics on /metrics.

Configuration is read from loom.json in the working directory.

Examples:
  loom dev
  loom dev --address=:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(address)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default from loom.json)")
	return cmd
}

func runDev(address string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if address != "" {
		cfg.Server.Address = address
	}

	log := newLogger(cfg.Log.Level)
	slog.SetDefault(log)

	resolver := newResolver(cfg, log)

	srv := server.New(demoApp, &server.Config{
		Address:     cfg.Server.Address,
		PageTitle:   cfg.Server.Title,
		PageScripts: cfg.Server.Scripts,
	}, server.WithLogger(log), server.WithResolver(resolver))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newResolver builds the stylesheet resolver, wiring the S3 source
// when a region is configured in the environment.
func newResolver(cfg *config.Config, log *slog.Logger) *styles.Resolver {
	opts := []styles.Option{styles.WithLogger(log)}
	if region := os.Getenv("LOOM_S3_REGION"); region != "" {
		opts = append(opts, styles.WithS3(s3.New(s3.Options{Region: region})))
	}
	resolver := styles.NewResolver(opts...)

	// Warm configured sheets so hot reload watches them from the start.
	for name, ref := range cfg.Styles.Sheets {
		sheet := resolver.Resolve(ref)
		if err := sheet.Err(); err != nil {
			log.Warn("sheet failed to load", "sheet", name, "error", err)
		}
	}
	return resolver
}

// demoApp is a small counter so the dev server has something to serve.
func demoApp(ctx *server.AppContext) error {
	count := reactive.NewSignal("0")
	n := 0

	return ctx.Root.Render(vdom.El("root",
		vdom.El("h1", vdom.Text("loom dev")),
		vdom.El("button", vdom.Props{
			vdom.KeyOn: map[string]any{
				"click": func(*dom.Event) {
					n++
					count.Set(strconv.Itoa(n))
				},
			},
		}, vdom.Text("count")),
		vdom.El("output", vdom.P("value"), count),
	))
}
