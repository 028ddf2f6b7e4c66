// Package browse wires the engine together: payload in, structured markup
// rendered into a view, the navigation index kept in step, and anchor
// scrolls gated on content readiness and tab visibility.
package browse

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/pauta/pkg/document"
	"github.com/coolbeans/pauta/pkg/render"
	"github.com/coolbeans/pauta/pkg/scroll"
	"github.com/coolbeans/pauta/pkg/view"
)

// Config carries the tunables of one engine instance. All durations are
// in milliseconds of virtual scheduler time.
type Config struct {
	RawCacheSize       int `yaml:"rawCacheSize"`
	SanitizedCacheSize int `yaml:"sanitizedCacheSize"`
	ChunkThreshold     int `yaml:"chunkThreshold"`

	HighlightMillis    int `yaml:"highlightMillis"`
	SettleMillis       int `yaml:"settleMillis"`
	WatchTimeoutMillis int `yaml:"watchTimeoutMillis"`

	ViewportHeight int `yaml:"viewportHeight"`
	ListItemHeight int `yaml:"listItemHeight"`
	ListViewport   int `yaml:"listViewport"`

	// DocumentKind selects query normalization: "position" or "raw".
	DocumentKind string `yaml:"documentKind"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		RawCacheSize:       render.DefaultRawCacheSize,
		SanitizedCacheSize: render.DefaultSanitizedCacheSize,
		ChunkThreshold:     render.DefaultChunkThreshold,
		HighlightMillis:    int(scroll.DefaultHighlightDuration / time.Millisecond),
		SettleMillis:       int(scroll.DefaultSettleDelay / time.Millisecond),
		WatchTimeoutMillis: int(scroll.DefaultWatchTimeout / time.Millisecond),
		ViewportHeight:     view.DefaultViewportHeight,
		DocumentKind:       "position",
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return config, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if _, err := config.Kind(); err != nil {
		return config, err
	}
	return config, nil
}

// Kind maps the configured document kind to its enum value.
func (config Config) Kind() (document.Kind, error) {
	switch config.DocumentKind {
	case "", "position":
		return document.KindPosition, nil
	case "raw":
		return document.KindRaw, nil
	default:
		return document.KindPosition, fmt.Errorf("unknown document kind %q", config.DocumentKind)
	}
}

// scrollOptions translates the config durations into resolver options.
func (config Config) scrollOptions() scroll.Options {
	return scroll.Options{
		HighlightDuration: time.Duration(config.HighlightMillis) * time.Millisecond,
		SettleDelay:       time.Duration(config.SettleMillis) * time.Millisecond,
		WatchTimeout:      time.Duration(config.WatchTimeoutMillis) * time.Millisecond,
	}
}
