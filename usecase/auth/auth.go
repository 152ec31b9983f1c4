package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Matrix-I/todo-backend/domain"
	"github.com/Matrix-I/todo-backend/repository"
)

// UseCase issues and refreshes device sessions. The service has a single
// user, so authentication only distinguishes devices, not accounts: any
// device may register itself and receives a bearer token scoped to its
// session.
type UseCase struct {
	sessions repository.SessionRepository
	secret   []byte
	logger   *zap.Logger
}

func New(sessions repository.SessionRepository, secret string, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		sessions: sessions,
		secret:   []byte(secret),
		logger:   logger,
	}
}

// RegisterDevice opens a session for the device and returns it together
// with a signed bearer token.
func (uc *UseCase) RegisterDevice(ctx context.Context, deviceID, deviceName string, ttl time.Duration) (*domain.DeviceSession, string, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, "", domain.ErrInvalidPayload
	}

	now := time.Now()
	session := &domain.DeviceSession{
		ID:         uuid.NewString(),
		DeviceID:   deviceID,
		DeviceName: strings.TrimSpace(deviceName),
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, "", err
	}

	token, err := uc.signToken(session)
	if err != nil {
		return nil, "", domain.WrapError(domain.ErrCodeInternal, "failed to sign token", err)
	}

	uc.logger.Info("device session opened",
		zap.String("session_id", session.ID),
		zap.String("device_id", session.DeviceID))
	return session, token, nil
}

// RefreshSession extends an open session and returns a fresh token. An
// expired or unknown session cannot be refreshed.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.DeviceSession, string, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, "", domain.ErrSessionNotFound
	}

	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, "", err
	}
	session.ExpiresAt = time.Now().Add(ttl)

	token, err := uc.signToken(session)
	if err != nil {
		return nil, "", domain.WrapError(domain.ErrCodeInternal, "failed to sign token", err)
	}
	return session, token, nil
}

func (uc *UseCase) signToken(session *domain.DeviceSession) (string, error) {
	claims := jwt.MapClaims{
		"session_id": session.ID,
		"device_id":  session.DeviceID,
		"iat":        time.Now().Unix(),
		"exp":        session.ExpiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
}
