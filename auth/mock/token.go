package mock

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
)

func writeTokenError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "error_description": description})
}

// defaultTokenHandler handles authorization_code and refresh_token grants
func (m *AuthorizationService) defaultTokenHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeTokenError(w, http.StatusBadRequest, "invalid_request", "invalid form data")
		return
	}
	clientID, clientSecret, ok := r.BasicAuth()
	if !ok {
		clientID = r.PostForm.Get("client_id")
		clientSecret = r.PostForm.Get("client_secret")
	}
	if clientID != m.ClientID || (clientSecret != "" && clientSecret != m.ClientSecret) {
		writeTokenError(w, http.StatusUnauthorized, "invalid_client", "invalid client credentials")
		return
	}
	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		m.authorizationCodeGrants.Add(1)
		m.exchangeCode(w, r, clientSecret)
	case "refresh_token":
		m.refreshGrants.Add(1)
		m.refresh(w, r, clientSecret)
	default:
		writeTokenError(w, http.StatusBadRequest, "unsupported_grant_type", "unsupported grant type")
	}
}

func (m *AuthorizationService) exchangeCode(w http.ResponseWriter, r *http.Request, clientSecret string) {
	entry, ok := m.codes.Take(r.PostForm.Get("code"))
	if !ok {
		writeTokenError(w, http.StatusBadRequest, "invalid_grant", "unknown authorization code")
		return
	}
	if r.PostForm.Get("redirect_uri") != entry.redirectURI {
		writeTokenError(w, http.StatusBadRequest, "invalid_grant", "redirect uri mismatch")
		return
	}
	verifier := r.PostForm.Get("code_verifier")
	switch {
	case entry.codeChallenge != "":
		if verifier == "" || !verifyChallenge(verifier, entry.codeChallenge) {
			writeTokenError(w, http.StatusBadRequest, "invalid_grant", "code verifier mismatch")
			return
		}
	case m.ClientSecret == "" || clientSecret != m.ClientSecret:
		writeTokenError(w, http.StatusUnauthorized, "invalid_client", "client secret required")
		return
	}
	m.issueTokens(w, entry.state)
}

func (m *AuthorizationService) refresh(w http.ResponseWriter, r *http.Request, clientSecret string) {
	if m.ClientSecret != "" && clientSecret == "" {
		writeTokenError(w, http.StatusUnauthorized, "invalid_client", "client secret required")
		return
	}
	refreshToken := r.PostForm.Get("refresh_token")
	var subject string
	var ok bool
	if m.RotateRefreshTokens {
		subject, ok = m.refreshTokens.Take(refreshToken)
	} else {
		subject, ok = m.refreshTokens.Get(refreshToken)
	}
	if !ok {
		writeTokenError(w, http.StatusBadRequest, "invalid_grant", "unknown refresh token")
		return
	}
	accessToken, err := m.issueAccessToken(subject)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if m.RotateRefreshTokens {
		refreshToken = randomValue()
		m.refreshTokens.Put(refreshToken, subject)
	}
	m.writeTokens(w, accessToken, refreshToken, "")
}

func (m *AuthorizationService) issueTokens(w http.ResponseWriter, state string) {
	subject := m.User.Email
	accessToken, err := m.issueAccessToken(subject)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	refreshToken := randomValue()
	m.refreshTokens.Put(refreshToken, subject)
	if !m.EchoState {
		state = ""
	}
	m.writeTokens(w, accessToken, refreshToken, state)
}

func (m *AuthorizationService) issueAccessToken(subject string) (string, error) {
	accessToken, err := m.createJWT(subject, m.ClientID, m.AccessTokenTTL)
	if err != nil {
		return "", err
	}
	m.accessTokens.Put(accessToken, subject)
	return accessToken, nil
}

func (m *AuthorizationService) writeTokens(w http.ResponseWriter, accessToken, refreshToken, state string) {
	response := map[string]interface{}{
		"access_token":  accessToken,
		"token_type":    "Bearer",
		"refresh_token": refreshToken,
		"expires_in":    int(m.AccessTokenTTL.Seconds()),
	}
	if state != "" {
		response["state"] = state
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// IssueTokens creates a token pair without running the authorization flow.
func (m *AuthorizationService) IssueTokens() (accessToken, refreshToken string, err error) {
	subject := m.User.Email
	if accessToken, err = m.issueAccessToken(subject); err != nil {
		return "", "", err
	}
	refreshToken = randomValue()
	m.refreshTokens.Put(refreshToken, subject)
	return accessToken, refreshToken, nil
}

func verifyChallenge(verifier, challenge string) bool {
	sum := sha256.Sum256([]byte(verifier))
	expected := base64.RawURLEncoding.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(challenge)) == 1
}

func randomValue() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}
