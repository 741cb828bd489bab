package mock

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/viant/dashnex/auth"
)

// authenticated rejects requests without a bearer token issued by the service
func (m *AuthorizationService) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.apiRequests.Add(1)
		authHeader := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || token == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="dashnex"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if _, ok := m.accessTokens.Get(token); !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="dashnex", error="invalid_token"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}

func readDomain(r *http.Request) (string, bool) {
	var body struct {
		Domain string `json:"domain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Domain == "" {
		return "", false
	}
	return body.Domain, true
}

func (m *AuthorizationService) userHandler(w http.ResponseWriter, _ *http.Request) {
	m.mux.Lock()
	user := m.User
	user.Licenses = make([]auth.License, len(m.User.Licenses))
	for i, license := range m.User.Licenses {
		license.ActivatedCount = len(m.activations[license.Product])
		user.Licenses[i] = license
	}
	m.mux.Unlock()
	writeJSON(w, user)
}

func (m *AuthorizationService) license(product string) (auth.License, bool) {
	for _, license := range m.User.Licenses {
		if license.Product == product {
			return license, true
		}
	}
	return auth.License{}, false
}

func (m *AuthorizationService) activationStatusHandler(w http.ResponseWriter, r *http.Request) {
	product := r.PathValue("product")
	m.mux.Lock()
	defer m.mux.Unlock()
	license, ok := m.license(product)
	if !ok {
		http.Error(w, "Unknown product", http.StatusNotFound)
		return
	}
	activations := append([]auth.Activation{}, m.activations[product]...)
	writeJSON(w, &auth.ActivationStatus{
		Product:         product,
		ActivationLimit: license.ActivationLimit,
		ActivatedCount:  len(activations),
		Activations:     activations,
	})
}

func (m *AuthorizationService) activateHandler(w http.ResponseWriter, r *http.Request) {
	product := r.PathValue("product")
	domain, ok := readDomain(r)
	if !ok {
		http.Error(w, "Missing domain", http.StatusBadRequest)
		return
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	license, ok := m.license(product)
	if !ok {
		http.Error(w, "Unknown product", http.StatusNotFound)
		return
	}
	if len(m.activations[product]) >= license.ActivationLimit {
		http.Error(w, "Activation limit reached", http.StatusConflict)
		return
	}
	m.activationID++
	activation := auth.Activation{ID: m.activationID, Domain: domain}
	m.activations[product] = append(m.activations[product], activation)
	writeJSON(w, map[string]int{"id": activation.ID})
}

func (m *AuthorizationService) revokeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid activation id", http.StatusBadRequest)
		return
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	for product, activations := range m.activations {
		for i, activation := range activations {
			if activation.ID == id {
				m.activations[product] = append(activations[:i:i], activations[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
	}
	http.Error(w, "Activation not found", http.StatusNotFound)
}

func (m *AuthorizationService) revokeDomainHandler(w http.ResponseWriter, r *http.Request) {
	product := r.PathValue("product")
	domain, ok := readDomain(r)
	if !ok {
		http.Error(w, "Missing domain", http.StatusBadRequest)
		return
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	for i, activation := range m.activations[product] {
		if activation.Domain == domain {
			activations := m.activations[product]
			m.activations[product] = append(activations[:i:i], activations[i+1:]...)
			writeJSON(w, map[string]int{"id": activation.ID})
			return
		}
	}
	http.Error(w, "Activation not found", http.StatusNotFound)
}
