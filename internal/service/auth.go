package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/graceflow/graceflow-api/internal/domain"
	"github.com/graceflow/graceflow-api/internal/infra/observability"
	"github.com/graceflow/graceflow-api/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

const tokenIssuer = "graceflow-api"

// AuthService signs staff in and turns access tokens back into sessions.
type AuthService struct {
	store        port.AuthStore
	profiles     port.Cache[*domain.Profile]
	jwtSecret    []byte
	accessTTL    time.Duration
	fallbackRole domain.Role
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewAuthService creates a new auth service. fallbackRole is given to
// users that authenticate but have no profile row; empty refuses them.
func NewAuthService(store port.AuthStore, profiles port.Cache[*domain.Profile], jwtSecret string, accessTTL time.Duration, fallbackRole domain.Role, metrics *observability.Metrics, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:        store,
		profiles:     profiles,
		jwtSecret:    []byte(jwtSecret),
		accessTTL:    accessTTL,
		fallbackRole: fallbackRole,
		metrics:      metrics,
		logger:       logger,
	}
}

// ============================================================
// Login: POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return nil, &domain.ErrValidation{Field: "identifier", Message: "is required"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "is required"}
	}

	userID, err := s.store.VerifyCredentials(ctx, identifier, req.Password)
	if err != nil {
		s.logger.Warn("login failed",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	session, err := s.session(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("session.role", string(session.Role)))

	token, err := s.signAccessToken(session)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("staff signed in",
		zap.String("user_id", session.UserID),
		zap.String("role", string(session.Role)),
	)

	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		Session:     session,
	}, nil
}

// ============================================================
// SessionFromToken: used by middleware
// ============================================================

// AccessClaims are the claims carried by access tokens.
type AccessClaims struct {
	Username string `json:"username"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

// SessionFromToken validates an access token and resolves the caller's
// current role from the profile (cached).
func (s *AuthService) SessionFromToken(ctx context.Context, tokenString string) (domain.Session, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.SessionFromToken")
	defer span.End()

	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return domain.Session{}, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return domain.Session{}, &domain.ErrUnauthorized{Message: "invalid token"}
	}
	if claims.Type != "access" {
		return domain.Session{}, &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	return s.session(ctx, claims.Subject, claims.Username)
}

// session builds the session of an authenticated user.
func (s *AuthService) session(ctx context.Context, userID, username string) (domain.Session, error) {
	profile, hit, err := s.profiles.GetOrLoad(ctx, "profile:"+userID, func(ctx context.Context) (*domain.Profile, error) {
		return s.store.GetProfile(ctx, userID)
	})
	if hit {
		s.metrics.IncrCacheHit("profile")
	} else {
		s.metrics.IncrCacheMiss("profile")
	}
	if err != nil {
		s.metrics.IncrExternalError("store")
		return domain.Session{}, fmt.Errorf("get profile: %w", err)
	}

	if profile == nil {
		if s.fallbackRole == "" {
			return domain.Session{}, &domain.ErrUnauthorized{Message: "no staff profile for this account"}
		}
		s.logger.Debug("no profile row, using fallback role",
			zap.String("user_id", userID),
			zap.String("role", string(s.fallbackRole)),
		)
		return domain.Session{UserID: userID, Username: username, Role: s.fallbackRole}, nil
	}

	if !profile.Role.Valid() {
		return domain.Session{}, &domain.ErrForbidden{Action: "sign in", Role: profile.Role}
	}
	if profile.Username != "" {
		username = profile.Username
	}
	return domain.Session{UserID: userID, Username: username, Role: profile.Role}, nil
}

func (s *AuthService) signAccessToken(session domain.Session) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Username: session.Username,
		Type:     "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
