package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gitshopapp/gemcart/internal/logging"
)

const sellerRole = "seller"

type SellerAuthConfig struct {
	Secret []byte
	// Issuer is checked against the iss claim when set.
	Issuer string
}

// SellerClaims are the claims a seller bearer token carries. The subject is
// the seller ID.
type SellerClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type sellerContextKey struct{}

// IssueSellerToken signs an HS256 token for sellerID valid for ttl.
func IssueSellerToken(cfg SellerAuthConfig, sellerID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SellerClaims{
		Role: sellerRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sellerID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Secret)
}

// RequireSeller rejects requests without a valid seller bearer token and
// stores the seller ID in the request context.
func (h *Handlers) RequireSeller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := h.loggerFromContext(r.Context())

		claims, err := h.parseSellerToken(r)
		if err != nil {
			logger.Warn("rejected seller request", "reason", err.Error())
			h.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}

		ctx := context.WithValue(r.Context(), sellerContextKey{}, claims.Subject)
		ctx = logging.WithAttrs(ctx, h.logger, "seller_id", claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handlers) parseSellerToken(r *http.Request) (*SellerClaims, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
		return nil, errors.New("missing bearer token")
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if h.sellerJWT.Issuer != "" {
		options = append(options, jwt.WithIssuer(h.sellerJWT.Issuer))
	}

	claims := &SellerClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return h.sellerJWT.Secret, nil
	}, options...)
	if err != nil {
		return nil, err
	}
	if claims.Role != sellerRole {
		return nil, errors.New("token is not a seller token")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

func sellerFromContext(ctx context.Context) (string, bool) {
	sellerID, ok := ctx.Value(sellerContextKey{}).(string)
	return sellerID, ok && sellerID != ""
}
