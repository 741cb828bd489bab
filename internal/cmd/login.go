package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/scy/auth/flow/browser"
)

// LoginCommand runs the authorization code flow with a local callback listener
type LoginCommand struct {
	command
	Scope   string        `short:"s" long:"scope" description:"requested scope"`
	Open    bool          `short:"o" long:"open" description:"open the authorization URL in a browser"`
	Timeout time.Duration `long:"timeout" description:"callback wait time" default:"5m"`
}

func (c *LoginCommand) Execute([]string) error {
	return c.with(func(ctx context.Context, s *session) error {
		callback, err := newCallbackServer(s.client.Config().RedirectURI)
		if err != nil {
			return err
		}
		go callback.Start()
		defer callback.Close()

		scope := c.Scope
		if scope == "" {
			scope = s.config.Scope
		}
		URL, err := s.client.AuthorizationURL(ctx, scope)
		if err != nil {
			return err
		}
		if _, err = fmt.Fprintf(c.out(), "Open the following URL to sign in:\n%v\n", URL); err != nil {
			return err
		}
		if c.Open {
			opener := browser.Open(URL)
			if err = opener.Start(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to open browser")
			} else {
				go func() { _ = opener.Wait() }()
			}
		}

		waitCtx, cancel := context.WithTimeout(ctx, c.Timeout)
		defer cancel()
		query, err := callback.Wait(waitCtx)
		if err != nil {
			return err
		}
		s.logger.Debug().Msg("callback received")
		if err = s.client.HandleCallback(ctx, query); err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.out(), "authenticated")
		return err
	})
}
