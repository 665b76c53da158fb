package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/postview/internal/blog"
	"github.com/starford/postview/internal/feed"
	"github.com/starford/postview/internal/render"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Content  ContentConfig     `yaml:"content"`
	Feed     FeedConfig        `yaml:"feed"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
	Site     SiteConfig        `yaml:"site"`
	Sessions SessionsConfig    `yaml:"sessions"`
	SSE      SSEConfig         `yaml:"sse"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Content, &c.Feed, &c.SQLite, &c.Auth, &c.Site, &c.Sessions, &c.SSE,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// ContentConfig holds the content directory and how it is read.
//
// Mode selects the source of posts:
//   - "feed" (default): FeedFile inside Dir holds a JSON or JSONP payload.
//   - "markdown": every *.md file under Dir is one post.
type ContentConfig struct {
	Dir      string `yaml:"dir"`
	FeedFile string `yaml:"feed_file"`
	Mode     string `yaml:"mode"`
	Watch    bool   `yaml:"watch"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = blog.ModeFeed
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Mode, validation.Required, validation.In(blog.ModeFeed, blog.ModeMarkdown)),
		validation.Field(&c.FeedFile, validation.When(c.Mode == blog.ModeFeed, validation.Required)),
	)
}

// FeedConfig configures the optional remote feed poller. An empty URL
// disables polling.
type FeedConfig struct {
	URL      string        `yaml:"url"`
	Format   string        `yaml:"format"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
	MinGap   time.Duration `yaml:"min_gap"`
}

// Enabled reports whether a remote feed is configured.
func (c *FeedConfig) Enabled() bool {
	return c.URL != ""
}

// Validate validates the feed configuration.
func (c *FeedConfig) Validate() error {
	if c.Format == "" {
		c.Format = feed.FormatAuto
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, is.URL),
		validation.Field(&c.Format, validation.In(feed.FormatAuto, feed.FormatJSON, feed.FormatJSONP, feed.FormatRSS)),
		validation.Field(&c.Interval, validation.When(c.Enabled(), validation.Required, validation.Min(time.Second))),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MinGap, validation.Min(time.Duration(0))),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for the /api routes.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// SiteConfig holds the page title and user-facing labels.
type SiteConfig struct {
	Title         string `yaml:"title"`
	EmptyMessage  string `yaml:"empty_message"`
	ReadMoreLabel string `yaml:"read_more_label"`
	Callback      string `yaml:"callback"`
	FeedScript    bool   `yaml:"feed_script"`
}

// Labels returns the card labels, falling back to the defaults.
func (c *SiteConfig) Labels() render.Labels {
	l := render.DefaultLabels()
	if c.EmptyMessage != "" {
		l.Empty = c.EmptyMessage
	}
	if c.ReadMoreLabel != "" {
		l.ReadMore = c.ReadMoreLabel
	}
	return l
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Callback, validation.By(func(any) error {
			if c.Callback != "" && !feed.ValidCallback(c.Callback) {
				return fmt.Errorf("invalid JSONP callback %q", c.Callback)
			}
			return nil
		})),
	)
}

// SessionsConfig caps live reader sessions.
type SessionsConfig struct {
	Max int `yaml:"max"`
}

// Validate validates the sessions configuration.
func (c *SessionsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Max, validation.Min(0)),
	)
}

// SSEConfig configures the event stream.
type SSEConfig struct {
	RefreshThrottle time.Duration `yaml:"refresh_throttle"`
}

// Validate validates the SSE configuration.
func (c *SSEConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RefreshThrottle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:            8080,
				ShutdownTimeout: 10 * time.Second,
			},
		},
		Content: ContentConfig{
			Dir:      "./content",
			FeedFile: "feed.json",
			Mode:     blog.ModeFeed,
			Watch:    true,
		},
		Feed: FeedConfig{
			Format:   feed.FormatAuto,
			Interval: 5 * time.Minute,
			Timeout:  15 * time.Second,
			MinGap:   10 * time.Second,
		},
		SQLite: SQLiteConfig{
			Path: "./postview.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Site: SiteConfig{
			Title:    "postview",
			Callback: "renderFeed",
		},
		Sessions: SessionsConfig{
			Max: 256,
		},
		SSE: SSEConfig{
			RefreshThrottle: 2 * time.Second,
		},
	}
}
