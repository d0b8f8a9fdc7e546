package validation

import (
	"testing"
)

type sample struct {
	Name   string  `json:"name" validate:"required,max=5,excludesall=<>"`
	Link   string  `json:"link,omitempty" validate:"omitempty,http_url"`
	Date   string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Count  int64   `json:"count" validate:"gte=0"`
	Nested []inner `json:"items" validate:"max=2,dive"`
}

type inner struct {
	ID int64 `json:"id" validate:"gt=0"`
}

func TestValidate(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   sample
		wantErr string
	}{
		{"正常", sample{Name: "shirt", Link: "https://example.com/a.png", Date: "2026-10-15"}, ""},
		{"必須", sample{}, "name is required"},
		{"長さ超過", sample{Name: "sweater"}, "name must not exceed 5 characters"},
		{"禁止文字", sample{Name: "<b>"}, "name contains forbidden characters"},
		{"不正なURL", sample{Name: "a", Link: "not a url"}, "link must be a valid URL"},
		{"不正な日付", sample{Name: "a", Date: "15/10/2026"}, "date must be a date in YYYY-MM-DD format"},
		{"ネストした要素", sample{Name: "a", Nested: []inner{{ID: 0}}}, "id must be greater than 0"},
		{"要素数超過", sample{Name: "a", Nested: []inner{{1}, {2}, {3}}}, "items must not have more than 2 entries"},
		{"未対応タグ", sample{Name: "a", Count: -1}, "count is invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}
