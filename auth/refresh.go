package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"
)

// refreshTimeout bounds a shared refresh, which outlives its callers' contexts.
const refreshTimeout = time.Minute

// Refresh obtains a new token pair with the stored refresh token. When the
// token endpoint rejects the refresh, the session is cleared so the caller
// has to authenticate again. A missing refresh token or a failure to reach
// the endpoint leaves the store as is.
//
// Concurrent calls on the same Client share a single token request, which is
// not cancelled when one of the callers gives up.
func (c *Client) Refresh(ctx context.Context) error {
	result := c.refreshGroup.DoChan("refresh", func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return nil, c.refresh(refreshCtx)
	})
	select {
	case ret := <-result:
		if ret.Shared {
			c.logger.Debug().Msg("joined in-flight refresh")
		}
		return ret.Err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrRequestFailed, ctx.Err())
	}
}

func (c *Client) refresh(ctx context.Context) (err error) {
	ctx, span := c.tracer.Start(ctx, "dashnex.auth.refresh")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	refreshToken, err := c.store.RefreshToken(ctx)
	if err != nil {
		return err
	}
	if refreshToken == "" {
		return ErrNoRefreshToken
	}
	tokenSource := c.config.oauth2Config().TokenSource(c.oauth2Context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := tokenSource.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if !errors.As(err, &retrieveErr) || retrieveErr.Response == nil {
			return fmt.Errorf("%w: %w", ErrRequestFailed, err)
		}
		err = tokenError(ErrRefreshFailed, err)
		c.logger.Debug().Err(err).Msg("refresh failed, clearing session")
		if clearErr := c.store.ClearTokens(ctx); clearErr != nil {
			return errors.Join(err, clearErr)
		}
		return err
	}
	if err = c.store.SetTokens(ctx, token.AccessToken, token.RefreshToken); err != nil {
		return fmt.Errorf("failed to store refreshed tokens: %w", err)
	}
	c.logger.Debug().Bool("rotated", token.RefreshToken != refreshToken).Msg("session refreshed")
	return nil
}
