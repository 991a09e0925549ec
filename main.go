package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"

	"github.com/alimasry/go-styled-editor/config"
	"github.com/alimasry/go-styled-editor/markup"
	"github.com/alimasry/go-styled-editor/server"
	"github.com/alimasry/go-styled-editor/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	normalize := flag.Bool("normalize", false, "read markup from stdin, write its normalized form to stdout and exit")
	flag.Parse()

	if *normalize {
		if err := runNormalize(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatal(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(context.Background(), cfg.Store, log)
	if err != nil {
		log.WithError(err).Fatal("open store")
	}
	defer closeStore()

	seed := ""
	if cfg.SeedDemo {
		seed = server.DemoContent
	}
	hub := server.NewHub(st, seed, log)
	go hub.Run()
	defer hub.Close()

	srv := &http.Server{Addr: cfg.Addr, Handler: server.NewHandler(hub, cfg.StaticDir)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.WithFields(logrus.Fields{"addr": cfg.Addr, "store": cfg.Store.Backend}).Info("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server stopped")
	}
}

func runNormalize(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	out, err := markup.Normalize(markup.Sanitize(string(data)))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log, nil
}

// openStore returns the configured store and a function that releases it.
// Firestore is wrapped in a write-behind cache.
func openStore(ctx context.Context, cfg config.StoreConfig, log *logrus.Logger) (store.DocumentStore, func(), error) {
	if cfg.Backend != "firestore" {
		return store.NewMemoryStore(), func() {}, nil
	}
	client, err := firestore.NewClient(ctx, cfg.FirestoreProject)
	if err != nil {
		return nil, nil, fmt.Errorf("firestore client: %w", err)
	}
	cached := store.NewCachedStore(store.NewFirestoreStore(client), cfg.FlushInterval, log)
	return cached, func() {
		cached.Close()
		client.Close()
	}, nil
}
