package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type LoginResult struct {
	UserID int64
	Token  string
}

type Service struct {
	store    StoreAPI
	secret   string
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewService(store StoreAPI, secret string, tokenTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{store: store, secret: secret, tokenTTL: tokenTTL, logger: logger}
}

// Login checks the password of the first super_admin account. The console has
// a single password field and no username.
func (s *Service) Login(ctx context.Context, password string) (LoginResult, error) {
	user, err := s.store.FirstUserWithRole(ctx, RoleSuperAdmin)
	if err != nil {
		return LoginResult{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		s.logger.Warn("superuser login rejected", zap.Int64("user_id", user.ID))
		return LoginResult{}, ErrInvalidPassword
	}
	token, err := GenerateToken(s.secret, Claims{UserID: user.ID, Role: user.Role}, s.tokenTTL)
	if err != nil {
		return LoginResult{}, err
	}
	s.logger.Info("superuser authenticated", zap.Int64("user_id", user.ID))
	return LoginResult{UserID: user.ID, Token: token}, nil
}

func (s *Service) ParseToken(token string) (*Claims, error) {
	return ParseToken(s.secret, token)
}
