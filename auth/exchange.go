package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/viant/dashnex/auth/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"
)

// tokenResponse is the token endpoint payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	State        string `json:"state,omitempty"`
}

// ExchangeCodeForToken trades an authorization code for a token pair and
// stores it. The stored code verifier and state are cleared whatever the
// outcome, so they are never reused.
func (c *Client) ExchangeCodeForToken(ctx context.Context, code string) (err error) {
	ctx, span := c.tracer.Start(ctx, "dashnex.auth.exchange")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	if code == "" {
		return fmt.Errorf("%w: authorization code is required", ErrTokenExchange)
	}
	verifier, err := c.codeVerifier(ctx)
	if err != nil {
		return err
	}
	if c.config.IsPublic() && verifier == "" {
		return fmt.Errorf("%w: set a client secret or start the flow with AuthorizationURL to create a code verifier", ErrConfiguration)
	}
	span.SetAttributes(attribute.Bool("dashnex.pkce", verifier != ""))
	defer func() {
		if clearErr := c.clearPending(ctx); clearErr != nil && err == nil {
			err = clearErr
		}
	}()

	var token *tokenResponse
	if c.legacyTokenRequest {
		token, err = c.legacyExchange(ctx, code, verifier)
	} else {
		token, err = c.exchange(ctx, code, verifier)
	}
	if err != nil {
		c.logger.Debug().Err(err).Msg("code exchange failed")
		return err
	}
	if err = c.verifyState(ctx, token.State); err != nil {
		return err
	}
	if err = c.store.SetTokens(ctx, token.AccessToken, token.RefreshToken); err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}
	c.logger.Debug().Bool("refreshToken", token.RefreshToken != "").Msg("code exchanged")
	return nil
}

// HandleCallback processes the query of the redirect back from the
// authorization server: it surfaces server errors, checks the returned state
// against the persisted one and exchanges the code.
func (c *Client) HandleCallback(ctx context.Context, query url.Values) error {
	if errorCode := query.Get("error"); errorCode != "" {
		if description := query.Get("error_description"); description != "" {
			return fmt.Errorf("%w: %s: %s", ErrTokenExchange, errorCode, description)
		}
		return fmt.Errorf("%w: %s", ErrTokenExchange, errorCode)
	}
	expected, err := c.storedState(ctx)
	if err != nil {
		return err
	}
	if expected != "" && query.Get("state") != expected {
		return fmt.Errorf("%w: callback state does not match the authorization request", ErrStateMismatch)
	}
	return c.ExchangeCodeForToken(ctx, query.Get("code"))
}

func (c *Client) exchange(ctx context.Context, code, verifier string) (*tokenResponse, error) {
	var options []oauth2.AuthCodeOption
	if verifier != "" {
		options = append(options, oauth2.VerifierOption(verifier))
	}
	token, err := c.config.oauth2Config().Exchange(c.oauth2Context(ctx), code, options...)
	if err != nil {
		return nil, tokenError(ErrTokenExchange, err)
	}
	ret := &tokenResponse{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}
	if state, ok := token.Extra("state").(string); ok {
		ret.State = state
	}
	return ret, nil
}

func (c *Client) legacyExchange(ctx context.Context, code, verifier string) (*tokenResponse, error) {
	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", c.config.RedirectURI)
	params.Set("client_id", c.config.ClientID)
	if c.config.ClientSecret != "" {
		params.Set("client_secret", c.config.ClientSecret)
	}
	if verifier != "" {
		params.Set("code_verifier", verifier)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.endpoint(tokenPath)+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newStatusError(ErrTokenExchange, resp, body)
	}
	ret := &tokenResponse{}
	if err = json.Unmarshal(body, ret); err != nil {
		return nil, fmt.Errorf("%w: invalid token response: %w", ErrTokenExchange, err)
	}
	if ret.AccessToken == "" {
		return nil, fmt.Errorf("%w: server response missing access_token", ErrTokenExchange)
	}
	return ret, nil
}

// verifyState compares an echoed state with the persisted one; either being
// absent skips the check.
func (c *Client) verifyState(ctx context.Context, echoed string) error {
	if echoed == "" {
		return nil
	}
	expected, err := c.storedState(ctx)
	if err != nil {
		return err
	}
	if expected != "" && expected != echoed {
		return fmt.Errorf("%w: token response state does not match the authorization request", ErrStateMismatch)
	}
	return nil
}

func (c *Client) codeVerifier(ctx context.Context) (string, error) {
	verifiers, ok := c.store.(store.VerifierStore)
	if !ok {
		return "", nil
	}
	return verifiers.CodeVerifier(ctx)
}

func (c *Client) storedState(ctx context.Context) (string, error) {
	states, ok := c.store.(store.StateStore)
	if !ok {
		return "", nil
	}
	return states.State(ctx)
}

// clearPending removes the code verifier and state of the finished attempt.
func (c *Client) clearPending(ctx context.Context) error {
	var errs []error
	if verifiers, ok := c.store.(store.VerifierStore); ok {
		errs = append(errs, verifiers.SetCodeVerifier(ctx, ""))
	}
	if states, ok := c.store.(store.StateStore); ok {
		errs = append(errs, states.SetState(ctx, ""))
	}
	return errors.Join(errs...)
}
