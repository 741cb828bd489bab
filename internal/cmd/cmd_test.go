package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/dashnex/auth"
	"github.com/viant/dashnex/auth/mock"
)

const redirectURI = "http://localhost:3000/callback"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	_, err := flags.NewParser(NewOptions(out), flags.HelpFlag).ParseArgs(args)
	return out.String(), err
}

func TestCommands(t *testing.T) {
	server, err := mock.NewHTTPTestAuthorizationServer(mock.WithClient("cli-client", ""), mock.WithRedirectURI(redirectURI))
	require.NoError(t, err)
	defer server.Close()

	dir := t.TempDir()
	configURL := filepath.Join(dir, "dashnex.yaml")
	content := fmt.Sprintf("clientId: cli-client\nredirectUri: %v\nbaseUrl: %v\nstore:\n  kind: storage\n  url: %v\n",
		redirectURI, server.URL(), filepath.Join(dir, "tokens"))
	require.NoError(t, os.WriteFile(configURL, []byte(content), 0o600))

	output, err := execute(t, "-c", configURL, "status")
	require.NoError(t, err)
	assert.Equal(t, "not authenticated\n", output)

	_, err = execute(t, "-c", configURL, "whoami")
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)

	output, err = execute(t, "-c", configURL, "url")
	require.NoError(t, err)
	callback, err := server.Authorize(strings.TrimSpace(output))
	require.NoError(t, err)

	output, err = execute(t, "-c", configURL, "exchange", "--code", callback.Get("code"))
	require.NoError(t, err)
	assert.Equal(t, "authenticated\n", output)

	output, err = execute(t, "-c", configURL, "status")
	require.NoError(t, err)
	assert.Contains(t, output, "subject: jane@example.com")

	output, err = execute(t, "-c", configURL, "whoami")
	require.NoError(t, err)
	assert.Contains(t, output, `"email": "jane@example.com"`)

	output, err = execute(t, "-c", configURL, "activation", "activate", "-p", "builder", "-d", "one.example.com")
	require.NoError(t, err)
	assert.Contains(t, output, `"id": 1`)

	output, err = execute(t, "-c", configURL, "activation", "status", "-p", "builder")
	require.NoError(t, err)
	assert.Contains(t, output, "one.example.com")

	output, err = execute(t, "-c", configURL, "activation", "revoke-domain", "-p", "builder", "-d", "one.example.com")
	require.NoError(t, err)
	assert.Contains(t, output, `"id": 1`)

	_, err = execute(t, "-c", configURL, "activation", "revoke", "--id", "1")
	assert.ErrorIs(t, err, auth.ErrRequestFailed)

	output, err = execute(t, "-c", configURL, "logout")
	require.NoError(t, err)
	assert.Equal(t, "logged out\n", output)

	output, err = execute(t, "-c", configURL, "status")
	require.NoError(t, err)
	assert.Equal(t, "not authenticated\n", output)
}

func TestCommands_InvalidConfig(t *testing.T) {
	configURL := filepath.Join(t.TempDir(), "dashnex.yaml")
	require.NoError(t, os.WriteFile(configURL, []byte("clientId: id\n"), 0o600))
	_, err := execute(t, "-c", configURL, "status")
	assert.ErrorIs(t, err, auth.ErrConfiguration)
}

func freePort(t *testing.T) int {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

func TestCallbackServer(t *testing.T) {
	_, err := newCallbackServer("https://example.com/callback")
	assert.Error(t, err)
	_, err = newCallbackServer("http://localhost/callback")
	assert.Error(t, err)

	redirect := fmt.Sprintf("http://127.0.0.1:%d/callback", freePort(t))
	server, err := newCallbackServer(redirect)
	require.NoError(t, err)
	go server.Start()
	defer server.Close()

	resp, err := http.Get(redirect + "?state=s")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(redirect + "?code=c1&state=s")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	query, err := server.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c1", query.Get("code"))

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = server.Wait(ctx)
	assert.Error(t, err)
}

func TestCallbackServer_ServeFailure(t *testing.T) {
	server, err := newCallbackServer(fmt.Sprintf("http://127.0.0.1:%d/callback", freePort(t)))
	require.NoError(t, err)
	require.NoError(t, server.listener.Close())
	go server.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = server.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "callback listener failed")
	assert.NoError(t, ctx.Err())
}

func TestCommands_DefaultStoreKeepsSession(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	server, err := mock.NewHTTPTestAuthorizationServer(mock.WithClient("cli-client", ""))
	require.NoError(t, err)
	defer server.Close()
	configURL := filepath.Join(t.TempDir(), "dashnex.yaml")
	content := fmt.Sprintf("clientId: cli-client\nredirectUri: %v\nbaseUrl: %v\n", redirectURI, server.URL())
	require.NoError(t, os.WriteFile(configURL, []byte(content), 0o600))

	output, err := execute(t, "-c", configURL, "url")
	require.NoError(t, err)
	callback, err := server.Authorize(strings.TrimSpace(output))
	require.NoError(t, err)

	_, err = execute(t, "-c", configURL, "exchange", "--code", callback.Get("code"))
	require.NoError(t, err)
	output, err = execute(t, "-c", configURL, "whoami")
	require.NoError(t, err)
	assert.Contains(t, output, `"email": "jane@example.com"`)
}
