package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"household/internal/household"
	"household/internal/identity"
	"household/internal/logger"
	"household/internal/metrics"
	"household/internal/server"
	"household/repository/db"
	fsstore "household/repository/firestore"
	inmemory "household/repository/inmemory"

	firebase "firebase.google.com/go/v4"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run wires the service from configuration and serves until ctx is done.
func run(ctx context.Context, args []string) error {
	cfg, err := server.ReadConfig(args)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	log, err := logger.InitLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.EphemeralSecret {
		log.Warn("TOKEN_SECRET not set, using a random secret; issued tokens will not survive a restart")
	}

	var app *firebase.App
	if cfg.Store == server.StoreFirestore || cfg.Identity == server.IdentityFirebase {
		app, err = newFirebaseApp(ctx, cfg)
		if err != nil {
			return err
		}
	}

	store, closeStore, err := newStore(ctx, cfg, app, log)
	if err != nil {
		return err
	}
	defer closeStore()

	idp, err := newIdentity(ctx, cfg, app)
	if err != nil {
		return err
	}

	svc := household.New(store, idp, log)
	api := server.NewHouseholdAPI(svc, cfg, log, metrics.New())
	if api == nil {
		return errors.New("failed to initialize API")
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("service started",
			zap.String("addr", cfg.Addr),
			zap.Int("port", cfg.Port),
			zap.String("store", cfg.Store),
			zap.String("identity", cfg.Identity),
		)
		serverErr <- api.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested, starting graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
			return errors.Wrap(err, "shutdown")
		}
		log.Info("graceful shutdown completed")
		return nil

	case err := <-serverErr:
		log.Error("server stopped", zap.Error(err))
		return errors.Wrap(err, "serve")
	}
}

func newFirebaseApp(ctx context.Context, cfg *server.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentials))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "firebase.NewApp failed")
	}
	return app, nil
}

// newStore opens the configured document store. The returned func releases
// it and is never nil.
func newStore(ctx context.Context, cfg *server.Config, app *firebase.App, log *zap.Logger) (household.Store, func(), error) {
	switch cfg.Store {
	case server.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return inmemory.NewStorage(), func() {}, nil

	case server.StorePostgres:
		if err := db.Migration(cfg.DBStr, cfg.MigratePath); err != nil {
			return nil, nil, errors.Wrap(err, "apply migrations")
		}
		log.Info("migrations applied")
		storage, err := db.NewStorage(cfg.DBStr, log)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect to postgres")
		}
		return storage, storage.Close, nil

	case server.StoreFirestore:
		if app == nil {
			return nil, nil, errors.New("firestore store needs a firebase app")
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, nil, errors.Wrap(err, "app.Firestore failed")
		}
		storage := fsstore.NewStorage(client, log)
		return storage, func() {
			if err := storage.Close(); err != nil {
				log.Warn("firestore close failed", zap.Error(err))
			}
		}, nil
	}
	return nil, nil, errors.Errorf("unknown store %q", cfg.Store)
}

func newIdentity(ctx context.Context, cfg *server.Config, app *firebase.App) (identity.Provider, error) {
	switch cfg.Identity {
	case server.IdentityLocal:
		return identity.NewLocal(cfg.TokenSecret, cfg.TokenTTL), nil

	case server.IdentityFirebase:
		if app == nil {
			return nil, errors.New("firebase identity needs a firebase app")
		}
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "app.Auth failed")
		}
		return identity.NewFirebase(client), nil
	}
	return nil, errors.Errorf("unknown identity provider %q", cfg.Identity)
}
