package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	server "github.com/kazz187/wbsgantt/internal"
	"github.com/kazz187/wbsgantt/internal/config"
	"github.com/kazz187/wbsgantt/internal/eventbus"
	"github.com/kazz187/wbsgantt/internal/project"
	projectrepo "github.com/kazz187/wbsgantt/internal/project/repositoryimpl"
	"github.com/kazz187/wbsgantt/internal/pushnotification"
	pushsubrepo "github.com/kazz187/wbsgantt/internal/pushsubscription/repositoryimpl"
	"github.com/kazz187/wbsgantt/pkg/clog"
	"github.com/kazz187/wbsgantt/pkg/panicerr"
	"github.com/kazz187/wbsgantt/pkg/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Setup storage
	var store storage.Storage
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
	default:
		store, err = storage.NewLocalStorage(env.BaseDir)
	}
	if err != nil {
		return err
	}
	var watcher storage.Watcher
	if env.WatchStorage {
		w, ok := storage.AsWatcher(store)
		if ok {
			watcher = w
		} else {
			slog.Warn("storage watching is not supported by this storage type", "type", env.StorageEnv.Type)
		}
	}

	window, err := env.Window()
	if err != nil {
		return err
	}

	bus := eventbus.New()

	projectRepo := projectrepo.NewYAMLRepository(store)
	pushSubRepo := pushsubrepo.NewYAMLRepository(store)

	editor := project.NewEditor(projectRepo, bus, project.WithStrictDependencies(env.StrictDependencies))
	if env.SeedSample {
		if err := project.SeedSample(ctx, editor); err != nil {
			return err
		}
	}

	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSender := pushnotification.NewSender(vapidEnv, pushSubRepo)
	pushDispatcher := pushnotification.NewDispatcher(bus, pushSender)

	srv := server.NewServer(
		env,
		project.NewServer(editor, window, env.EdgeLayout()),
		project.NewEventsHandler(bus),
		pushnotification.NewServer(vapidEnv, pushSubRepo, pushSender),
		server.NewStorageHealthChecker(store),
	)

	g := panicerr.NewGroup(ctx)
	g.Go("push-dispatcher", pushDispatcher.Start)
	g.Go("overdue-sweeper", project.NewOverdueSweeper(editor, env.OverdueSweepInterval).Start)
	if watcher != nil {
		g.Go("project-reloader", project.NewReloader(watcher, editor).Start)
	}
	g.Go("http-server", func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go("http-shutdown", func(ctx context.Context) error {
		<-ctx.Done()
		slog.Info("shutting down server")
		// Give active connections time to finish after stream contexts are cancelled.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
