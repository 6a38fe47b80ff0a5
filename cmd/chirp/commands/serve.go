package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lbliii/chirp"
	"github.com/lbliii/chirp/config"
	"github.com/lbliii/chirp/middleware"
	"github.com/lbliii/chirp/sse"
)

func newServeCmd() *cobra.Command {
	var configPath string
	var dev bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo server",
		Long:  "Run a demo server wired with the standard middleware stack and\na handful of routes exercising buffered, streamed, and push responses.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger.BuildLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			app := demoApp(cfg, logger)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if dev && configPath != "" {
				go func() {
					err := config.Watch(ctx, configPath, logger, func(*config.Config) {
						logger.Info("configuration changed; restart to apply")
					})
					if err != nil && ctx.Err() == nil {
						logger.Warn("config watcher stopped", zap.Error(err))
					}
				}()
			}

			errCh := make(chan error, 1)
			go func() { errCh <- app.Start(cfg.Server.Address) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return app.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to yaml config file")
	cmd.Flags().BoolVar(&dev, "dev", false, "watch the config file for changes")

	return cmd
}

// demoApp assembles a small application touring the framework surface.
func demoApp(cfg *config.Config, logger *zap.Logger) *chirp.App {
	app := chirp.New(
		chirp.WithLogger(logger),
		chirp.WithDebug(cfg.Debug),
	)
	app.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(),
	)

	app.GET("/", func(c *chirp.Context) (any, error) {
		return map[string]string{"service": "chirp demo", "status": "ok"}, nil
	})

	app.GET("/users/{id:integer}", func(c *chirp.Context) (any, error) {
		return map[string]any{"id": c.ParamValue("id")}, nil
	}).Named("user")

	app.POST("/echo", func(c *chirp.Context) (any, error) {
		var payload map[string]any
		if err := c.Bind(&payload); err != nil {
			return nil, err
		}
		return &chirp.Result{Body: payload, Code: 201}, nil
	})

	app.GET("/ticks", func(c *chirp.Context) (any, error) {
		count := c.QueryInt("count", 10)
		return sse.NewStream(func(ctx context.Context, events chan<- sse.Event) error {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for i := 0; i < count; i++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case t := <-ticker.C:
					ev := sse.Event{
						ID:   strconv.Itoa(i),
						Type: "tick",
						Data: t.Format(time.RFC3339),
					}
					select {
					case events <- ev:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
			return nil
		}, sse.WithHeartbeat(cfg.SSE.Heartbeat)), nil
	})

	app.GET("/files/{path:rest-of-path}", func(c *chirp.Context) (any, error) {
		return fmt.Sprintf("requested %s", c.Param("path")), nil
	})

	return app
}
