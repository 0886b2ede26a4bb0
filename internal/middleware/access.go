package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"
)

// AccessKeyHeader carries the shared key that unlocks the admin pages.
const AccessKeyHeader = "X-Access-Key"

// Role is a capability granted by an access key.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
)

type rolesKey struct{}

// AccessGate maps access keys to roles by comparing them with bcrypt hashes.
// The developer key grants both roles; the admin key grants admin only.
// An empty hash disables that key. This is a presentation-layer switch
// between views, not an authentication system.
type AccessGate struct {
	adminHash     []byte
	developerHash []byte
}

// NewAccessGate returns a gate for the given bcrypt hashes.
func NewAccessGate(adminHash, developerHash string) *AccessGate {
	return &AccessGate{adminHash: []byte(adminHash), developerHash: []byte(developerHash)}
}

// Roles returns the roles key unlocks, or nil.
func (g *AccessGate) Roles(key string) []Role {
	if key == "" {
		return nil
	}
	if matches(g.developerHash, key) {
		return []Role{RoleDeveloper, RoleAdmin}
	}
	if matches(g.adminHash, key) {
		return []Role{RoleAdmin}
	}
	return nil
}

// Require returns a middleware that rejects requests whose access key does
// not grant role with 403 Forbidden. The granted roles are stored in the
// request context for RolesFromContext.
func (g *AccessGate) Require(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles := g.Roles(r.Header.Get(AccessKeyHeader))
			if !slices.Contains(roles, role) {
				writeForbidden(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), rolesKey{}, roles)))
		})
	}
}

// RolesFromContext returns the roles Require stored, if any.
func RolesFromContext(ctx context.Context) []Role {
	roles, _ := ctx.Value(rolesKey{}).([]Role)
	return roles
}

// HashAccessKey returns the bcrypt hash to put in configuration for key.
func HashAccessKey(key string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func matches(hash []byte, key string) bool {
	return len(hash) > 0 && bcrypt.CompareHashAndPassword(hash, []byte(key)) == nil
}

// writeForbidden writes the API's standard error body.
func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": "forbidden", "message": "a valid access key is required"},
	})
}
