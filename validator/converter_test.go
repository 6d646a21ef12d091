package validator

import (
	"errors"
	"testing"

	"github.com/KOMKZ/yogan-hiera/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestInvalid = errcode.New(99, 1, "test", "error.test.invalid", "配置无效")

// MockValidatable 实现 Validatable 接口用于测试
type MockValidatable struct {
	ShouldFail       bool
	ValidationErrors validation.Errors
	OtherError       error
}

func (m *MockValidatable) Validate() error {
	if m.OtherError != nil {
		return m.OtherError
	}
	if m.ShouldFail && m.ValidationErrors != nil {
		return m.ValidationErrors
	}
	if m.ShouldFail {
		return validation.Errors{
			"field1": errors.New("field1 is required"),
		}
	}
	return nil
}

func TestValidate_Success(t *testing.T) {
	req := &MockValidatable{ShouldFail: false}
	assert.NoError(t, Validate(req, errTestInvalid))
}

func TestValidate_ValidationError(t *testing.T) {
	req := &MockValidatable{
		ShouldFail: true,
		ValidationErrors: validation.Errors{
			"datadir":   errors.New("cannot be blank"),
			"extension": errors.New("must be in a valid format"),
		},
	}

	err := Validate(req, errTestInvalid)
	require.Error(t, err)

	// 验证返回的是 LayeredError
	var layeredErr *errcode.LayeredError
	require.True(t, errors.As(err, &layeredErr), "expected LayeredError")

	assert.True(t, errors.Is(err, errTestInvalid))
	assert.Equal(t, "test", layeredErr.Module())
	assert.Contains(t, layeredErr.Error(), "datadir: cannot be blank")

	fields, ok := layeredErr.Data()["fields"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "cannot be blank", fields["datadir"])
	assert.Equal(t, "must be in a valid format", fields["extension"])
}

func TestValidate_OtherError(t *testing.T) {
	cause := errors.New("boom")
	err := Validate(&MockValidatable{OtherError: cause}, errTestInvalid)

	assert.True(t, errors.Is(err, errTestInvalid))
	assert.True(t, errors.Is(err, cause))
}

func TestConvertValidationError_SkipsNilFields(t *testing.T) {
	err := ConvertValidationError(validation.Errors{
		"ok":  nil,
		"bad": errors.New("is required"),
	}, errTestInvalid)

	fields := err.Data()["fields"].(map[string]string)
	assert.Len(t, fields, 1)
	assert.Equal(t, "is required", fields["bad"])
}

func TestConvertValidationError_DoesNotMutateBase(t *testing.T) {
	_ = ConvertValidationError(validation.Errors{"x": errors.New("bad")}, errTestInvalid)
	assert.Equal(t, "配置无效", errTestInvalid.Error())
	assert.Empty(t, errTestInvalid.Data())
}
