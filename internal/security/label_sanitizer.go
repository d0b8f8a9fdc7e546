// Package security はアプリケーションのセキュリティ機能を提供する。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// LabelSanitizer は衣類の種類・色などユーザー入力の短いラベルをプレーンテキスト化する。
type LabelSanitizer interface {
	// PlainText は全てのHTMLタグを除去し、前後の空白を取り除いた文字列を返す。
	// エンティティはデコード済みの状態で返す。
	PlainText(raw string) string
}

// labelSanitizer はLabelSanitizerの実装。
// bluemonday.Policyはスレッドセーフなため、1インスタンスを共有する。
type labelSanitizer struct {
	policy *bluemonday.Policy
}

// NewLabelSanitizer はタグを一切許可しないStrictPolicyでLabelSanitizerを生成する。
func NewLabelSanitizer() *labelSanitizer {
	return &labelSanitizer{policy: bluemonday.StrictPolicy()}
}

// PlainText はHTMLタグを除去したプレーンテキストを返す。
func (s *labelSanitizer) PlainText(raw string) string {
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}

var _ LabelSanitizer = (*labelSanitizer)(nil)
