package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// URLCommand prints the authorization URL
type URLCommand struct {
	command
	Scope string `short:"s" long:"scope" description:"requested scope"`
}

func (c *URLCommand) Execute([]string) error {
	return c.with(func(ctx context.Context, s *session) error {
		scope := c.Scope
		if scope == "" {
			scope = s.config.Scope
		}
		URL, err := s.client.AuthorizationURL(ctx, scope)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.out(), URL)
		return err
	})
}

// ExchangeCommand exchanges a code for tokens
type ExchangeCommand struct {
	command
	Code string `long:"code" description:"authorization code" required:"true"`
}

func (c *ExchangeCommand) Execute([]string) error {
	return c.with(func(ctx context.Context, s *session) error {
		if err := s.client.ExchangeCodeForToken(ctx, c.Code); err != nil {
			return err
		}
		_, err := fmt.Fprintln(c.out(), "authenticated")
		return err
	})
}

// StatusCommand reports whether the store holds an access token
type StatusCommand struct {
	command
}

func (c *StatusCommand) Execute([]string) error {
	return c.with(func(ctx context.Context, s *session) error {
		ok, err := s.client.IsAuthenticated(ctx)
		if err != nil {
			return err
		}
		if !ok {
			_, err = fmt.Fprintln(c.out(), "not authenticated")
			return err
		}
		claims, err := s.client.Claims(ctx)
		if err != nil {
			_, err = fmt.Fprintln(c.out(), "authenticated")
			return err
		}
		status := "authenticated"
		if claims.Expired(time.Now()) {
			status = "authenticated (access token expired, refreshed on next request)"
		}
		_, err = fmt.Fprintf(c.out(), "%v\nsubject: %v\nexpires: %v\n", status, claims.Subject, claims.ExpiresAt.Format(time.RFC3339))
		return err
	})
}

// WhoamiCommand prints the authenticated user
type WhoamiCommand struct {
	command
}

func (c *WhoamiCommand) Execute([]string) error {
	return c.with(func(ctx context.Context, s *session) error {
		user, err := s.client.CurrentUser(ctx)
		if err != nil {
			return err
		}
		return c.print(user)
	})
}

// LogoutCommand clears the session
type LogoutCommand struct {
	command
}

func (c *LogoutCommand) Execute([]string) error {
	return c.with(func(ctx context.Context, s *session) error {
		if err := s.client.Logout(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(c.out(), "logged out")
		return err
	})
}

// ActivationStatusCommand lists activations
type ActivationStatusCommand struct {
	command
	Product string `short:"p" long:"product" description:"product" required:"true"`
}

func (c *ActivationStatusCommand) Execute([]string) error {
	return c.with(func(ctx context.Context, s *session) error {
		status, err := s.client.ActivationStatus(ctx, c.Product)
		if err != nil {
			return err
		}
		return c.print(status)
	})
}

// ActivateCommand activates a domain
type ActivateCommand struct {
	command
	Product string `short:"p" long:"product" description:"product" required:"true"`
	Domain  string `short:"d" long:"domain" description:"domain" required:"true"`
}

func (c *ActivateCommand) Execute([]string) error {
	return c.with(func(ctx context.Context, s *session) error {
		activation, err := s.client.ActivateDomain(ctx, c.Product, c.Domain)
		if err != nil {
			return err
		}
		return c.print(activation)
	})
}

// RevokeCommand revokes an activation by id
type RevokeCommand struct {
	command
	ID int `long:"id" description:"activation id" required:"true"`
}

func (c *RevokeCommand) Execute([]string) error {
	return c.with(func(ctx context.Context, s *session) error {
		if err := s.client.RevokeActivation(ctx, c.ID); err != nil {
			return err
		}
		_, err := fmt.Fprintf(c.out(), "revoked %v\n", c.ID)
		return err
	})
}

// RevokeDomainCommand revokes the activation of a domain
type RevokeDomainCommand struct {
	command
	Product string `short:"p" long:"product" description:"product" required:"true"`
	Domain  string `short:"d" long:"domain" description:"domain" required:"true"`
}

func (c *RevokeDomainCommand) Execute([]string) error {
	return c.with(func(ctx context.Context, s *session) error {
		activation, err := s.client.RevokeActivationByDomain(ctx, c.Product, c.Domain)
		if err != nil {
			return err
		}
		return c.print(activation)
	})
}

func (c *command) print(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out(), string(data))
	return err
}
