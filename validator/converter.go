// Package validator 提供统一的配置校验和错误转换
package validator

import (
	"errors"

	"github.com/KOMKZ/yogan-hiera/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validatable 可校验接口
type Validatable interface {
	Validate() error
}

// Validate 校验 v，失败时返回 base 的副本
// ozzo-validation 的字段错误放入 Data()["fields"]，其他错误作为 cause
func Validate(v Validatable, base *errcode.LayeredError) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	// 判断是否为 ozzo-validation 错误
	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		return ConvertValidationError(validationErrs, base)
	}

	return base.Wrap(err)
}

// ConvertValidationError 将 ozzo-validation 错误转换为 LayeredError
func ConvertValidationError(validationErrs validation.Errors, base *errcode.LayeredError) *errcode.LayeredError {
	// 提取字段级错误
	fields := make(map[string]string)
	failed := validation.Errors{}
	for field, fieldErr := range validationErrs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
			failed[field] = fieldErr
		}
	}

	return base.
		WithMsgf("%s: %s", base.Message(), failed.Error()).
		WithData("fields", fields)
}
