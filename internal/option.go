package internal

import "github.com/starford/postview/internal/feed"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	fetcher *feed.Fetcher
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithFetcher overrides the remote feed fetcher built from config.
func WithFetcher(f *feed.Fetcher) Option {
	return func(a *application) {
		a.fetcher = f
	}
}
