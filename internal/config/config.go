// Package config loads DashNex client settings from a YAML file, the
// environment and an optional scy-managed OAuth2 client config.
package config

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/dashnex/auth"
	"github.com/viant/dashnex/auth/store"
	"github.com/viant/dashnex/auth/store/sqlite"
	"github.com/viant/scy/auth/authorizer"
	"gopkg.in/yaml.v3"
)

// Store kinds
const (
	StoreMemory  = "memory"
	StoreStorage = "storage"
	StoreSQLite  = "sqlite"
)

// DefaultStoreURL returns the token directory used when no store is
// configured, so sessions survive between command invocations.
func DefaultStoreURL() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: no store configured and no user config dir: %w", auth.ErrConfiguration, err)
	}
	return filepath.Join(dir, "dashnex"), nil
}

// Config represents client settings
type Config struct {
	ClientID        string `yaml:"clientId" env:"DASHNEX_CLIENT_ID" validate:"required"`
	ClientSecret    string `yaml:"clientSecret" env:"DASHNEX_CLIENT_SECRET"`
	RedirectURI     string `yaml:"redirectUri" env:"DASHNEX_REDIRECT_URI" validate:"required,url"`
	BaseURL         string `yaml:"baseUrl" env:"DASHNEX_BASE_URL" validate:"omitempty,url"`
	Scope           string `yaml:"scope" env:"DASHNEX_SCOPE"`
	OAuth2ConfigURL string `yaml:"oauth2ConfigUrl" env:"DASHNEX_OAUTH2_CONFIG_URL"`
	Store           Store  `yaml:"store"`
}

// Store selects the token store; without a kind, tokens are kept under
// DefaultStoreURL.
type Store struct {
	Kind string `yaml:"kind" env:"DASHNEX_STORE" validate:"oneof=memory storage sqlite"`
	// URL is a storage base URL or sqlite database path
	URL    string `yaml:"url" env:"DASHNEX_STORE_URL" validate:"required_unless=Kind memory"`
	Prefix string `yaml:"prefix" env:"DASHNEX_STORE_PREFIX"`
}

// Load reads config from URL (if not empty), applies environment overrides
// and the scy OAuth2 config, then validates the result.
func Load(ctx context.Context, URL string) (*Config, error) {
	ret := &Config{}
	if URL != "" {
		fs := afs.New()
		data, err := fs.DownloadWithURL(ctx, URL)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
		}
		if err = yaml.Unmarshal(data, ret); err != nil {
			return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
		}
	}
	if err := env.Parse(ret); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if ret.OAuth2ConfigURL != "" {
		if err := ret.mergeOAuth2Config(ctx); err != nil {
			return nil, err
		}
	}
	if ret.Store.Kind == "" {
		ret.Store.Kind = StoreStorage
		if ret.Store.URL == "" {
			location, err := DefaultStoreURL()
			if err != nil {
				return nil, err
			}
			ret.Store.URL = location
		}
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// mergeOAuth2Config fills client settings missing so far from a scy OAuth2
// config, which may be encrypted.
func (c *Config) mergeOAuth2Config(ctx context.Context) error {
	oAuthConfig := &authorizer.OAuthConfig{ConfigURL: c.OAuth2ConfigURL}
	if err := authorizer.New().EnsureConfig(ctx, oAuthConfig); err != nil {
		return fmt.Errorf("failed to load oauth2 config %v: %w", c.OAuth2ConfigURL, err)
	}
	cfg := oAuthConfig.Config
	if cfg == nil {
		return nil
	}
	if c.ClientID == "" {
		c.ClientID = cfg.ClientID
	}
	if c.ClientSecret == "" {
		c.ClientSecret = cfg.ClientSecret
	}
	if c.RedirectURI == "" {
		c.RedirectURI = cfg.RedirectURL
	}
	if c.Scope == "" && len(cfg.Scopes) > 0 {
		c.Scope = strings.Join(cfg.Scopes, " ")
	}
	if c.BaseURL == "" && cfg.Endpoint.AuthURL != "" {
		c.BaseURL, _ = url.Base(cfg.Endpoint.AuthURL, "https")
	}
	return nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", auth.ErrConfiguration, err)
	}
	return nil
}

// ClientConfig returns the client registration
func (c *Config) ClientConfig() auth.ClientConfig {
	return auth.ClientConfig{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURI:  c.RedirectURI,
		BaseURL:      c.BaseURL,
	}
}

// OpenStore opens the configured token store. Stores holding resources
// (sqlite) implement io.Closer.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Kind {
	case StoreMemory:
		return store.NewMemoryStore(), nil
	case StoreStorage:
		fs := afs.New()
		if err := ensureDir(ctx, fs, c.Store.URL); err != nil {
			return nil, err
		}
		return store.NewStorageStore(fs, c.Store.URL, c.Store.Prefix), nil
	case StoreSQLite:
		location := url.Path(c.Store.URL)
		if parent := path.Dir(location); parent != "." {
			if err := ensureDir(ctx, afs.New(), parent); err != nil {
				return nil, err
			}
		}
		ret, err := sqlite.Open(location, c.Store.Prefix)
		if err != nil {
			return nil, err
		}
		return ret, nil
	}
	return nil, fmt.Errorf("%w: unsupported store kind %q", auth.ErrConfiguration, c.Store.Kind)
}

func ensureDir(ctx context.Context, fs afs.Service, URL string) error {
	if ok, _ := fs.Exists(ctx, URL); ok {
		return nil
	}
	if err := fs.Create(ctx, URL, 0o700, true); err != nil {
		return fmt.Errorf("failed to create store location %v: %w", URL, err)
	}
	return nil
}
