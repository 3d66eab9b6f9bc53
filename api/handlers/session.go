package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/innovate-ai/voxagent/types"
)

// SessionClaims is the JWT payload minted for clients.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// SessionHandler mints and verifies signed session tokens.
type SessionHandler struct {
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
}

// NewSessionHandler builds the handler.
func NewSessionHandler(secret []byte, ttl time.Duration, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionHandler{
		secret: secret,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "session_handler")),
	}
}

type sessionResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	ExpiresAt int64  `json:"expires_at"`
}

// HandleCreate serves POST /api/session.
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()
	now := time.Now()
	expiresAt := now.Add(h.ttl)

	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		WriteError(w, types.NewError(types.ErrConfiguration, "failed to sign session token").WithCause(err), h.logger)
		return
	}

	h.logger.Info("session created", zap.String("session_id", sessionID))

	WriteJSON(w, http.StatusOK, sessionResponse{
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: expiresAt.Unix(),
	})
}

// ParseToken verifies a bearer token and returns its session ID.
func (h *SessionHandler) ParseToken(raw string) (string, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, types.NewError(types.ErrAuthentication, "unexpected signing method")
		}
		return h.secret, nil
	})
	if err != nil {
		return "", types.NewError(types.ErrAuthentication, "invalid session token").WithCause(err)
	}
	if claims.SessionID == "" {
		return "", types.NewError(types.ErrAuthentication, "token carries no session")
	}
	return claims.SessionID, nil
}
