// Command marketd runs the listing API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/marketd/marketd/authorizer"
	"github.com/marketd/marketd/jsonweb"
	kithttp "github.com/marketd/marketd/kit/transport/http"
	"github.com/marketd/marketd/listings"
	"github.com/marketd/marketd/listings/transport"
	"github.com/marketd/marketd/sqlite"
	"github.com/marketd/marketd/sqlite/migrations"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type config struct {
	listenAddr string
	sqlitePath string
	jwtSecret  string
	logLevel   string
}

func newCommand() *cobra.Command {
	var cfg config

	cmd := &cobra.Command{
		Use:          "marketd",
		Short:        "marketd is the listing API server",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// flags may also be supplied through the environment, e.g.
			// MARKETD_JWT_SECRET for --jwt-secret
			v := viper.New()
			v.SetEnvPrefix("MARKETD")
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()

			var err error
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				if !f.Changed && v.IsSet(f.Name) {
					if ferr := cmd.Flags().Set(f.Name, v.GetString(f.Name)); ferr != nil && err == nil {
						err = ferr
					}
				}
			})
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.listenAddr, "listen-addr", ":8080", "address the http server binds to")
	cmd.Flags().StringVar(&cfg.sqlitePath, "sqlite-path", sqlite.DefaultFilename, "path to the sqlite database")
	cmd.Flags().StringVar(&cfg.jwtSecret, "jwt-secret", "", "secret used to verify bearer tokens")
	cmd.Flags().StringVar(&cfg.logLevel, "log-level", "info", "supported log levels are debug, info, and error")

	return cmd
}

func run(cfg config) error {
	logger, err := newLogger(cfg.logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.jwtSecret == "" {
		return errors.New("a jwt secret is required; set --jwt-secret or MARKETD_JWT_SECRET")
	}

	ctx := context.Background()

	store, err := sqlite.NewSqlStore(cfg.sqlitePath, logger.With(zap.String("service", "sqlite")))
	if err != nil {
		return errors.Wrap(err, "failed to open sqlite store")
	}
	defer store.Close()

	if err := sqlite.NewMigrator(store, logger.With(zap.String("service", "sqlite-migrations"))).Up(ctx, migrations.All); err != nil {
		return errors.Wrap(err, "failed to bring up migrations")
	}

	svc := listings.NewLoggingService(
		logger.With(zap.String("service", "listings")),
		listings.NewValidationService(
			authorizer.NewListingService(
				listings.NewCachingService(
					listings.NewService(logger, store)))))

	parser := jsonweb.NewTokenParser(jsonweb.SingleKeyStore([]byte(cfg.jwtSecret)))
	handler := transport.NewListingHandler(logger, svc)

	router := chi.NewRouter()
	router.Use(kithttp.WithPrincipal(parser, kithttp.ErrorHandler(0)))
	router.Mount(handler.Prefix(), handler)

	srv := &http.Server{
		Addr:    cfg.listenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("addr", cfg.listenAddr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, errors.Wrapf(err, "unknown log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
