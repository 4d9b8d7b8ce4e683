/*
auth.go - Login and bearer-token authentication

PURPOSE:
  Credential login against the employee store (bcrypt) issuing a signed
  HS256 token, plus the chi middleware that guards every other route.

TOKEN:
  24h expiry. The employee ID rides in the claims; handlers read it from
  the request context via EmployeeID(ctx).

SEE ALSO:
  - handlers.go: protected endpoints
  - cmd/server/main.go: secret configuration and demo seeding
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the token payload.
type Claims struct {
	Username   string `json:"username"`
	EmployeeID string `json:"employee_id"`
	jwt.RegisteredClaims
}

type ctxKey int

const employeeIDKey ctxKey = iota

// EmployeeID returns the authenticated employee's ID from the request
// context, or "" when the request is unauthenticated.
func EmployeeID(ctx context.Context) string {
	id, _ := ctx.Value(employeeIDKey).(string)
	return id
}

const tokenTTL = 24 * time.Hour

// Login authenticates a username/password pair and issues a bearer token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp, err := h.Store.GetEmployeeByUsername(r.Context(), strings.ToLower(req.Username))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up employee", err)
		return
	}
	// Same response for unknown user and bad password.
	if emp == nil || bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username:   emp.Username,
		EmployeeID: emp.EmployeeID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	signed, err := token.SignedString(h.JWTSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to sign token", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:    signed,
		Employee: toEmployeeDTO(*emp),
	})
}

// Profile returns the signed-in employee's record.
// GET /api/auth/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), EmployeeID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// Authenticate rejects requests without a valid bearer token and stores
// the employee ID in the request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "Missing token", nil)
			return
		}
		if len(header) < 8 || header[:7] != "Bearer " {
			writeError(w, http.StatusUnauthorized, "Invalid token format", nil)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(header[7:], claims, func(t *jwt.Token) (any, error) {
			return h.JWTSecret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		ctx := context.WithValue(r.Context(), employeeIDKey, claims.EmployeeID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HashPassword wraps bcrypt for seeding and account creation.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
