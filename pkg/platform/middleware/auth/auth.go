// Package auth authenticates the call-state service calling the filtering API.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"callguard/pkg/requestcontext"
)

// ServiceAudience is the audience inbound service tokens must carry.
const ServiceAudience = "callguard"

// TokenValidator validates a bearer token and returns the calling service.
type TokenValidator interface {
	ValidateToken(tokenString string) (*ServiceClaims, error)
}

// ServiceClaims are the claims carried by a service token.
type ServiceClaims struct {
	Service string `json:"svc"`
	jwt.RegisteredClaims
}

// HS256Validator validates HMAC-signed service tokens.
type HS256Validator struct {
	signingKey []byte
	audience   string
	leeway     time.Duration
}

// NewHS256Validator creates a validator. An empty audience disables the
// audience check.
func NewHS256Validator(signingKey, audience string) *HS256Validator {
	return &HS256Validator{
		signingKey: []byte(signingKey),
		audience:   audience,
		leeway:     5 * time.Second,
	}
}

var errMissingService = errors.New("token has no service claim")

// ValidateToken parses and verifies tokenString.
func (v *HS256Validator) ValidateToken(tokenString string) (*ServiceClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &ServiceClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.signingKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse service token: %w", err)
	}
	if claims.Service == "" {
		return nil, errMissingService
	}
	return claims, nil
}

// IssueToken signs a service token. Used by tooling and tests.
func (v *HS256Validator) IssueToken(service string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ServiceClaims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.signingKey)
}

var errAudienceRequired = errors.New("screener token needs an audience other than the service audience")

// HS256Signer signs outbound tokens for remote screeners. Each token names
// the receiving screener as its audience, so it cannot be replayed against
// this service or against another screener.
type HS256Signer struct {
	signingKey []byte
	service    string
}

func NewHS256Signer(signingKey, service string) *HS256Signer {
	return &HS256Signer{signingKey: []byte(signingKey), service: service}
}

// IssueToken signs a token for audience. The service audience is refused.
func (s *HS256Signer) IssueToken(audience string, ttl time.Duration) (string, error) {
	if audience == "" || audience == ServiceAudience {
		return "", errAudienceRequired
	}
	now := time.Now()
	claims := ServiceClaims{
		Service: s.service,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.service,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireServiceToken rejects requests without a valid bearer token. A nil
// validator disables the check (local development).
func RequireServiceToken(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithServiceSubject(ctx, claims.Service)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
