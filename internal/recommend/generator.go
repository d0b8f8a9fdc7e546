package recommend

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// Generator はプロンプトからJSON形式のプランを生成するインターフェース。
// 戻り値はplanSchemaに従ったJSON文字列。
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// planSchema は生成結果に強制するスキーマ。
// [{"date": string, "top_id": integer, "bottom_id": integer}]
var planSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date":      {Type: genai.TypeString, Description: "YYYY-MM-DD"},
			"top_id":    {Type: genai.TypeInteger},
			"bottom_id": {Type: genai.TypeInteger},
		},
		Required: []string{"date", "top_id", "bottom_id"},
	},
}

// GeminiGenerator はGeminiを使うGeneratorの実装。
type GeminiGenerator struct {
	model *genai.GenerativeModel
}

// NewGeminiGenerator はJSON出力とスキーマを設定したモデルでGeminiGeneratorを生成する。
// clientは複数リクエストで共有してよい。
func NewGeminiGenerator(client *genai.Client, modelName string) *GeminiGenerator {
	m := client.GenerativeModel(modelName)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = planSchema
	return &GeminiGenerator{model: m}
}

// GenerateJSON はプロンプトを送信し、最初の候補のテキストを返す。
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// responseText は最初の候補のテキストパートを連結して返す。
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates in response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("empty response")
	}
	return b.String(), nil
}

var _ Generator = (*GeminiGenerator)(nil)
