package cmd

import (
	"context"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/viant/dashnex/auth"
	"github.com/viant/dashnex/internal/config"
)

// Run runs the dashnex command line
func Run(args []string) error {
	_, err := flags.ParseArgs(NewOptions(os.Stdout), args)
	return err
}

// command carries shared options into each subcommand
type command struct {
	options *Options
}

// session is a client bound to the configured store
type session struct {
	config *config.Config
	client *auth.Client
	logger zerolog.Logger
	closer io.Closer
}

func (s *session) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (c *command) out() io.Writer {
	if c.options.out == nil {
		return os.Stdout
	}
	return c.options.out
}

func (c *command) open(ctx context.Context) (*session, error) {
	logger := newLogger(c.options.Verbose)
	cfg, err := config.Load(ctx, c.options.Config)
	if err != nil {
		return nil, err
	}
	tokens, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, err
	}
	ret := &session{config: cfg, logger: logger}
	if closer, ok := tokens.(io.Closer); ok {
		ret.closer = closer
	}
	if ret.client, err = auth.New(cfg.ClientConfig(), tokens, auth.WithLogger(logger)); err != nil {
		_ = ret.Close()
		return nil, err
	}
	logger.Debug().Str("store", cfg.Store.Kind).Str("baseURL", ret.client.Config().BaseURL).Msg("session opened")
	return ret, nil
}

// with opens a session, runs fn and closes the session
func (c *command) with(fn func(ctx context.Context, s *session) error) error {
	ctx := context.Background()
	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}
