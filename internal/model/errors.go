// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, wardrobe, upstream, generation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ
const (
	CategoryAuth       = "auth"
	CategoryValidation = "validation"
	CategoryWardrobe   = "wardrobe"
	CategoryUpstream   = "upstream"
	CategoryGeneration = "generation"
	CategorySystem     = "system"
)

// 定義済みエラーコード
const (
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeInvalidToken      = "INVALID_TOKEN"
	ErrCodeInvalidGoogleCode = "INVALID_GOOGLE_CODE"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidClothing   = "INVALID_CLOTHING"
	ErrCodeEmptyWardrobe     = "EMPTY_WARDROBE"
	ErrCodeClothingNotFound  = "CLOTHING_NOT_FOUND"
	ErrCodeWeatherFailed     = "WEATHER_UNAVAILABLE"
	ErrCodeWeatherParse      = "WEATHER_PARSE_FAILED"
	ErrCodeGenerationFailed  = "GENERATION_FAILED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// NewUnauthorizedError は認証情報が無い場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication required.",
		Category: CategoryAuth,
		Action:   "Sign in and send the session token as a Bearer token.",
	}
}

// NewInvalidTokenError はセッショントークンが不正・期限切れの場合のエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "Invalid token",
		Category: CategoryAuth,
		Action:   "Sign in again to obtain a new session token.",
	}
}

// NewInvalidGoogleCodeError は認可コードの交換・検証に失敗した場合のエラーを生成する。
func NewInvalidGoogleCodeError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidGoogleCode,
		Message:  fmt.Sprintf("Invalid Google code: %s", reason),
		Category: CategoryAuth,
		Action:   "Restart the Google sign-in flow.",
	}
}

// NewAuthUserNotFoundError はトークンのユーザーが既に存在しない場合の認証エラーを生成する。
func NewAuthUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: CategoryAuth,
		Action:   "Sign in again.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found.",
		Category: CategoryWardrobe,
		Action:   "Sign in again.",
	}
}

// NewInvalidRequestError はリクエストボディが不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("Invalid request: %s", reason),
		Category: CategoryValidation,
		Action:   "Check the request body format.",
	}
}

// NewInvalidClothingError は存在しない、または他人の衣類IDが含まれる場合のエラーを生成する。
func NewInvalidClothingError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidClothing,
		Message:  "Invalid clothing data(s)",
		Category: CategoryValidation,
		Action:   "Only use clothing items from your own wardrobe.",
	}
}

// NewInvalidClothingFieldError は衣類アイテムの入力値が不正な場合のエラーを生成する。
func NewInvalidClothingFieldError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidClothing,
		Message:  fmt.Sprintf("Invalid clothing item: %s", reason),
		Category: CategoryValidation,
		Action:   "Check the item type, color and image URL.",
	}
}

// NewEmptyWardrobeError はワードローブが空の場合のエラーを生成する。
func NewEmptyWardrobeError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyWardrobe,
		Message:  "No clothing items found in your wardrobe.",
		Category: CategoryWardrobe,
		Action:   "Add clothing items before generating a plan.",
	}
}

// NewClothingNotFoundError は衣類アイテムが見つからない場合のエラーを生成する。
func NewClothingNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeClothingNotFound,
		Message:  fmt.Sprintf("Clothing item not found: %d", id),
		Category: CategoryWardrobe,
		Action:   "Check the clothing item ID.",
	}
}

// NewWeatherFailedError は天気APIの呼び出しに失敗した場合のエラーを生成する。
func NewWeatherFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeWeatherFailed,
		Message:  "Weather API Error",
		Category: CategoryUpstream,
		Action:   "Check the city name or try again without a city.",
	}
}

// NewWeatherParseError は天気APIのレスポンスを解析できない場合のエラーを生成する。
func NewWeatherParseError() *APIError {
	return &APIError{
		Code:     ErrCodeWeatherParse,
		Message:  "Failed to parse weather data",
		Category: CategoryUpstream,
		Action:   "Try again later or without a city.",
	}
}

// NewGenerationFailedError は生成モデルによるプラン生成に失敗した場合のエラーを生成する。
func NewGenerationFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeGenerationFailed,
		Message:  fmt.Sprintf("Failed to generate outfits: %s", reason),
		Category: CategoryGeneration,
		Action:   "Request a new plan.",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal error occurred.",
		Category: CategorySystem,
		Action:   "Please try again later.",
	}
}
