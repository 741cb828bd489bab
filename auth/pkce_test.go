package auth

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeChallenge(t *testing.T) {
	// RFC 7636 appendix B
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", CodeChallenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"))
}

func TestRandomToken(t *testing.T) {
	random := bytes.NewReader(bytes.Repeat([]byte{0xfb}, 64))
	verifier, err := randomToken(random, codeVerifierSize)
	require.NoError(t, err)
	assert.Len(t, verifier, 43)
	assert.NotContains(t, verifier, "=")
	assert.NotContains(t, verifier, "+")
	assert.NotContains(t, verifier, "/")
	decoded, err := base64.RawURLEncoding.DecodeString(verifier)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0xfb}, codeVerifierSize), decoded)

	_, err = randomToken(bytes.NewReader([]byte{1, 2}), stateSize)
	assert.Error(t, err)
}
