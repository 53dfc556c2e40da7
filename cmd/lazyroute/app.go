package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vango-dev/lazyroute/internal/config"
	"github.com/vango-dev/lazyroute/pkg/bundle"
	"github.com/vango-dev/lazyroute/pkg/navigation"
	"github.com/vango-dev/lazyroute/pkg/scrollstore"
)

// loadConfig loads and validates the configuration at path, which may name
// the file or its directory.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if fi, statErr := os.Stat(path); statErr == nil && fi.IsDir() {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func newSource(cfg *config.Config) bundle.Source {
	if cfg.Bundles.Source == config.SourceS3 {
		s3cfg := cfg.Bundles.S3
		return bundle.NewS3Source(bundle.NewS3Client(s3cfg.Region, s3cfg.Endpoint), s3cfg.Bucket, s3cfg.Prefix)
	}
	return bundle.NewDirSource(os.DirFS(cfg.BundleDir()))
}

func newLoader(cfg *config.Config, logger *slog.Logger, opts ...bundle.LoaderOption) (*bundle.Loader, error) {
	timeout, err := cfg.FetchTimeout()
	if err != nil {
		return nil, err
	}
	opts = append([]bundle.LoaderOption{
		bundle.WithLogger(logger),
		bundle.WithFetchTimeout(timeout),
	}, opts...)
	return bundle.NewLoader(newSource(cfg), opts...), nil
}

// newScrollStore returns the configured store and a function releasing it.
func newScrollStore(ctx context.Context, cfg *config.Config) (scrollstore.Store, func() error, error) {
	if cfg.Scroll.Store != config.StoreRedis {
		return scrollstore.NewMemory(), func() error { return nil }, nil
	}
	ttl, err := cfg.RedisTTL()
	if err != nil {
		return nil, nil, err
	}
	r := cfg.Scroll.Redis
	store, err := scrollstore.NewRedis(ctx, scrollstore.RedisConfig{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
		Key:      r.Key,
		TTL:      ttl,
	})
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// controllerOptions maps configuration onto controller options.
func controllerOptions(cfg *config.Config, logger *slog.Logger, store scrollstore.Store) []navigation.Option {
	return []navigation.Option{
		navigation.WithLogger(logger),
		navigation.WithScrollStore(store),
		navigation.WithRestoreScrollPosition(cfg.Scroll.RestorePosition),
		navigation.WithAnchorScrolling(cfg.Scroll.AnchorScrolling),
		navigation.WithMaxRedirects(cfg.Navigation.MaxRedirects),
	}
}

func describeView(v *navigation.View) string {
	if v == nil {
		return "-"
	}
	s := v.ID
	if v.Bundle != nil && v.Bundle.ID != v.ID {
		s += fmt.Sprintf(" (bundle %s)", v.Bundle.ID)
	}
	for name, value := range v.Params {
		s += fmt.Sprintf(" %s=%s", name, value)
	}
	return s
}
