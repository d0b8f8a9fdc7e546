// Package auth はGoogle OAuthによるログインとセッショントークンの検証を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/wardrobe/internal/model"
	"github.com/hitoshi/wardrobe/internal/repository"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報を表す。
type OAuthUserInfo struct {
	Email   string
	Name    string
	Picture string
	// RefreshToken は同意画面でオフラインアクセスが許可された場合のみ設定される。
	RefreshToken string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// ExchangeCode は認可コードをトークンに交換し、検証済みのユーザー情報を返す。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	userRepo repository.UserRepository
	tokens   *TokenIssuer
	now      func() time.Time
}

// NewService はServiceを生成する。
func NewService(oauth OAuthProvider, userRepo repository.UserRepository, tokens *TokenIssuer) *Service {
	return &Service{
		oauth:    oauth,
		userRepo: userRepo,
		tokens:   tokens,
		now:      time.Now,
	}
}

// Login は認可コードを検証し、セッショントークンを発行する。
// 未登録ユーザーの場合はusersレコードを作成し、登録済みの場合はプロフィールを更新する。
func (s *Service) Login(ctx context.Context, code string) (string, error) {
	info, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		slog.Warn("google code exchange failed", slog.String("error", err.Error()))
		return "", model.NewInvalidGoogleCodeError("verification failed")
	}
	if info.Email == "" {
		return "", model.NewInvalidGoogleCodeError("email not provided")
	}

	user, err := s.userRepo.FindByEmail(ctx, info.Email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	if user == nil {
		user = &model.User{
			ID:                 uuid.New().String(),
			Email:              info.Email,
			Name:               info.Name,
			Picture:            info.Picture,
			GoogleRefreshToken: info.RefreshToken,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return "", fmt.Errorf("failed to create user: %w", err)
		}
		slog.Info("new user created", slog.String("user_id", user.ID))
	} else {
		user.Name = info.Name
		user.Picture = info.Picture
		user.UpdatedAt = now
		if err := s.userRepo.UpdateProfile(ctx, user, info.RefreshToken); err != nil {
			return "", fmt.Errorf("failed to update user: %w", err)
		}
		slog.Info("existing user logged in",
			slog.String("user_id", user.ID),
			slog.Bool("refresh_token_granted", info.RefreshToken != ""),
		)
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate はセッショントークンを検証し、対応するユーザーを返す。
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		slog.Debug("session token rejected", slog.String("error", err.Error()))
		return nil, model.NewInvalidTokenError()
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewAuthUserNotFoundError()
	}
	return user, nil
}
