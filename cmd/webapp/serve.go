package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Alp4ka/cursorpaging/internal/webapp/config"
	"github.com/Alp4ka/cursorpaging/internal/webapp/handler"
	"github.com/Alp4ka/cursorpaging/internal/webapp/model"
	"github.com/Alp4ka/cursorpaging/internal/webapp/store"
	"github.com/Alp4ka/cursorpaging/serializer"
)

var serveSeed int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the data record API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveSeed, "seed", 0, "insert this many records when the table is empty")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.Database, logger)
	if err != nil {
		return err
	}

	if err = store.Migrate(ctx, db); err != nil {
		return err
	}

	if serveSeed > 0 {
		var count int64
		if err = db.WithContext(ctx).Model(&model.DataRecord{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if _, err = store.Seed(ctx, db, serveSeed); err != nil {
				return err
			}
			logger.InfoContext(ctx, "records seeded", slog.Int("count", serveSeed))
		}
	}

	s, err := newSerializer(cfg.Paging, logger)
	if err != nil {
		return err
	}

	e := newServer(store.NewRepository(db, logger), s, cfg.Paging, logger)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gCtx, "starting server", slog.String("address", cfg.Server.Address))
		if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return e.Shutdown(shutdownCtx)
	})

	if err = g.Wait(); err != nil {
		return err
	}

	logger.Info("server exited")

	return nil
}

// newSerializer builds the cursor serializer. Without a secret cursors are
// only valid for the lifetime of the process.
func newSerializer(paging config.PagingConfig, logger *slog.Logger) (*serializer.RequestSerializer, error) {
	s := serializer.New().
		WithAttributes(model.AttrID, model.AttrName, model.AttrCreatedAt, model.AttrModifiedAt).
		WithLogger(logger)

	if paging.Secret == "" {
		logger.Warn("no paging secret configured, cursors will not survive a restart")
		return s, nil
	}

	enc, err := serializer.EncrypterFromSecret(paging.Secret)
	if err != nil {
		return nil, err
	}

	return s.WithEncrypter(enc), nil
}

func newServer(
	repo handler.DataRecordRepository,
	s *serializer.RequestSerializer,
	paging config.PagingConfig,
	logger *slog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				logger.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				logger.WarnContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.GET("/health", handler.NewHealthHandler().Handle)
	handler.NewDataRecordHandler(repo, s, paging, logger).Register(e)

	return e
}
