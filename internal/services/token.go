package services

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/watchlist-backend/internal/apperr"
	"github.com/AnshRaj112/watchlist-backend/internal/config"
)

// Rejection reasons, used as metric labels and log fields.
const (
	ReasonNoToken      = "no_token"
	ReasonInvalidToken = "invalid_token"
	ReasonExpiredToken = "expired_token"
	ReasonUserNotFound = "user_not_found"
)

// Caller-facing rejection messages.
const (
	MsgNoToken      = "Unauthorized: No token provided"
	MsgInvalidToken = "Unauthorized: Invalid token"
	MsgExpiredToken = "Unauthorized: Token expired"
	MsgUserNotFound = "User not found"
)

// Claims is the signed payload of a session token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService mints and checks HS256 session tokens and moves them
// between requests, responses and the jwt cookie. Tokens are stateless:
// nothing is stored server side and logout cannot revoke one early.
type TokenService struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool

	now func() time.Time
}

func NewTokenService(cfg *config.Config) *TokenService {
	name := cfg.CookieName
	if name == "" {
		name = "jwt"
	}
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		ttl:        cfg.TokenTTL,
		cookieName: name,
		secure:     cfg.IsProduction(),
		now:        time.Now,
	}
}

// SetClock replaces the time source. Tests only.
func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for userID that expires one TTL from now.
func (s *TokenService) Issue(userID primitive.ObjectID) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperr.Internal(err, "sign token")
	}
	return signed, exp, nil
}

// Verify checks the signature and expiry of token and returns the user id it
// was issued for. Failures are Unauthorized errors tagged with a reason.
func (s *TokenService) Verify(token string) (primitive.ObjectID, error) {
	if token == "" {
		return primitive.NilObjectID, apperr.Unauthorized(MsgNoToken, ReasonNoToken)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return primitive.NilObjectID, apperr.Unauthorized(MsgExpiredToken, ReasonExpiredToken)
		}
		return primitive.NilObjectID, apperr.Unauthorized(MsgInvalidToken, ReasonInvalidToken)
	}
	if !parsed.Valid {
		return primitive.NilObjectID, apperr.Unauthorized(MsgInvalidToken, ReasonInvalidToken)
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized(MsgInvalidToken, ReasonInvalidToken)
	}
	return id, nil
}

// SetCookie attaches token to the response with the session cookie flags.
func (s *TokenService) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearCookie expires the session cookie on the client.
func (s *TokenService) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ExtractToken reads a bearer token from the Authorization header, falling
// back to the session cookie. Returns "" when neither is present.
func (s *TokenService) ExtractToken(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if c, err := r.Cookie(s.cookieName); err == nil {
		return c.Value
	}
	return ""
}
