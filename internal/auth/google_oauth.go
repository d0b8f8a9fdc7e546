package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// Googleに要求するスコープ。カレンダー連携のためcalendar.eventsを含む。
var googleScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/calendar.events",
}

// IDTokenValidator はIDトークンを検証しペイロードを返す関数。
// 本番ではidtoken.Validateを使用する。
type IDTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleOAuthConfig はGoogle OAuthプロバイダーの設定。
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	// RedirectURL はポップアップ方式のコードフローでは "postmessage" を指定する。
	RedirectURL string

	// テスト用にオーバーライド可能
	Endpoint   oauth2.Endpoint
	HTTPClient *http.Client
	Validator  IDTokenValidator
}

// GoogleOAuthProvider はGoogle OAuth 2.0による認証を提供する。
type GoogleOAuthProvider struct {
	oauth      *oauth2.Config
	httpClient *http.Client
	validate   IDTokenValidator
}

// NewGoogleOAuthProvider はGoogleOAuthProviderを生成する。
func NewGoogleOAuthProvider(config GoogleOAuthConfig) *GoogleOAuthProvider {
	endpoint := config.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	validate := config.Validator
	if validate == nil {
		validate = idtoken.Validate
	}
	return &GoogleOAuthProvider{
		oauth: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       googleScopes,
		},
		httpClient: config.HTTPClient,
		validate:   validate,
	}
}

// OAuth2Config はカレンダー連携でリフレッシュトークンからトークンソースを作るための設定を返す。
func (p *GoogleOAuthProvider) OAuth2Config() *oauth2.Config {
	return p.oauth
}

// ExchangeCode は認可コードをトークンに交換し、IDトークンからユーザー情報を取り出す。
func (p *GoogleOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("id_token missing in token response")
	}

	payload, err := p.validate(ctx, rawIDToken, p.oauth.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id_token: %w", err)
	}

	return &OAuthUserInfo{
		Email:        claimString(payload.Claims, "email"),
		Name:         claimString(payload.Claims, "name"),
		Picture:      claimString(payload.Claims, "picture"),
		RefreshToken: token.RefreshToken,
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// compile-time interface check
var _ OAuthProvider = (*GoogleOAuthProvider)(nil)
