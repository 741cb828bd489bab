package auth

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const (
	userPath        = "/api/oauth/v2/user"
	activationsPath = "/api/oauth/v2/activations/"
)

// License is a product license held by a user
type License struct {
	Product         string `json:"product"`
	ActivationLimit int    `json:"activationLimit"`
	ActivatedCount  int    `json:"activatedCount"`
}

// User is the DashNex account of the authenticated user
type User struct {
	ID             int       `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	ReferralHash   string    `json:"referralHash"`
	CanImpersonate bool      `json:"canImpersonate"`
	Licenses       []License `json:"licenses"`
}

// Activation is a domain activated for a product
type Activation struct {
	ID     int    `json:"id"`
	Domain string `json:"domain,omitempty"`
}

// ActivationStatus describes product activations
type ActivationStatus struct {
	Product         string       `json:"product"`
	ActivationLimit int          `json:"activationLimit"`
	ActivatedCount  int          `json:"activatedCount"`
	Activations     []Activation `json:"activations"`
}

type domainRequest struct {
	Domain string `json:"domain"`
}

// CurrentUser returns the authenticated user
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	ret := &User{}
	if err := c.Request(ctx, userPath, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// ActivationStatus returns activations of product
func (c *Client) ActivationStatus(ctx context.Context, product string) (*ActivationStatus, error) {
	ret := &ActivationStatus{}
	if err := c.Request(ctx, activationsPath+url.PathEscape(product)+"/status", ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// ActivateDomain activates domain for product
func (c *Client) ActivateDomain(ctx context.Context, product, domain string) (*Activation, error) {
	ret := &Activation{}
	err := c.Request(ctx, activationsPath+url.PathEscape(product)+"/activate", ret,
		WithMethod(http.MethodPost), WithBody(&domainRequest{Domain: domain}))
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// RevokeActivation revokes an activation by id
func (c *Client) RevokeActivation(ctx context.Context, activationID int) error {
	return c.Request(ctx, activationsPath+strconv.Itoa(activationID)+"/revoke", nil, WithMethod(http.MethodDelete))
}

// RevokeActivationByDomain revokes the activation of domain for product
func (c *Client) RevokeActivationByDomain(ctx context.Context, product, domain string) (*Activation, error) {
	ret := &Activation{}
	err := c.Request(ctx, activationsPath+url.PathEscape(product)+"/domain/revoke", ret,
		WithMethod(http.MethodDelete), WithBody(&domainRequest{Domain: domain}))
	if err != nil {
		return nil, err
	}
	return ret, nil
}
