package mock

import (
	"net/http"
	"net/http/httptest"
	"net/url"
)

// defaultAuthorizeHandler handles authorization requests by approving them
// immediately and redirecting back with a code.
func (m *AuthorizationService) defaultAuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	query := r.URL.Query()
	if query.Get("client_id") != m.ClientID {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}
	if query.Get("response_type") != "code" {
		http.Error(w, "Unsupported response type", http.StatusBadRequest)
		return
	}
	redirectURI := query.Get("redirect_uri")
	if redirectURI == "" || (m.RedirectURI != "" && redirectURI != m.RedirectURI) {
		http.Error(w, "Invalid redirect URI", http.StatusBadRequest)
		return
	}
	entry := &authorizationCode{
		redirectURI:         redirectURI,
		state:               query.Get("state"),
		codeChallenge:       query.Get("code_challenge"),
		codeChallengeMethod: query.Get("code_challenge_method"),
	}
	if entry.codeChallenge == "" && m.ClientSecret == "" {
		http.Error(w, "PKCE required for public clients", http.StatusBadRequest)
		return
	}
	if entry.codeChallenge != "" && entry.codeChallengeMethod != "S256" {
		http.Error(w, "Unsupported code challenge method", http.StatusBadRequest)
		return
	}
	code := randomValue()
	m.codes.Put(code, entry)

	location, err := url.Parse(redirectURI)
	if err != nil {
		http.Error(w, "Invalid redirect URI", http.StatusBadRequest)
		return
	}
	values := location.Query()
	values.Set("code", code)
	if entry.state != "" {
		values.Set("state", entry.state)
	}
	location.RawQuery = values.Encode()
	http.Redirect(w, r, location.String(), http.StatusFound)
}

// Authorize approves an authorization URL built by a client and returns the
// callback query the browser would be redirected with.
func (m *AuthorizationService) Authorize(authorizationURL string) (url.Values, error) {
	parsed, err := url.Parse(authorizationURL)
	if err != nil {
		return nil, err
	}
	recorder := httptest.NewRecorder()
	m.defaultAuthorizeHandler(recorder, httptest.NewRequest(http.MethodGet, parsed.String(), nil))
	if recorder.Code != http.StatusFound {
		return nil, &AuthorizeError{StatusCode: recorder.Code, Message: recorder.Body.String()}
	}
	location, err := url.Parse(recorder.Header().Get("Location"))
	if err != nil {
		return nil, err
	}
	return location.Query(), nil
}
