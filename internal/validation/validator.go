// Package validation はvalidator/v10によるリクエスト検証を提供する。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator はvalidator/v10をラップし、最初の違反を読みやすいメッセージに変換する。
type Validator struct {
	v *validator.Validate
}

// New はJSONタグ名をフィールド名として使うValidatorを生成する。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Validate は構造体を検証し、違反があれば最初のものを説明するエラーを返す。
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	e := fieldErrs[0]
	return fmt.Errorf("%s %s", e.Field(), friendlyMessage(e))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		if k := e.Kind(); k == reflect.Slice || k == reflect.Array {
			return fmt.Sprintf("must not have more than %s entries", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "url", "http_url":
		return "must be a valid URL"
	case "excludesall":
		return "contains forbidden characters"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "gt":
		return "must be greater than " + e.Param()
	case "len":
		return "must have exactly " + e.Param() + " elements"
	default:
		return "is invalid"
	}
}
