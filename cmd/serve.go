package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/zhixue/internal/notify"
	"github.com/desertthunder/zhixue/internal/server"
	"github.com/desertthunder/zhixue/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the progress API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%w: --port out of range", shared.ErrInvalidFlag)
		}
		cfg.Port = port
	}

	courses, err := r.courses()
	if err != nil {
		return err
	}
	store, err := r.progressStore()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	center := notify.NewCenter(notify.CenterOpts{Logger: shared.WithLogger(r.logger, "component", "notify")})
	center.Start(ctx)
	defer center.Close()

	api := server.NewAPI(server.APIOpts{
		Catalog:    courses,
		Store:      store,
		Center:     center,
		Calculator: r.calculator(),
		Logger:     shared.WithLogger(r.logger, "component", "server"),
	})

	r.writePlain("Serving %d courses on http://%s\n", courses.Len(), cfg.Addr())
	return server.Serve(ctx, cfg.Addr(), server.NewHandler(api, cfg), r.logger)
}
