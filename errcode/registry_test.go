package errcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	err := New(90, 1, "test", "error.test.one", "one")
	assert.Same(t, err, r.Register(err))
	assert.Equal(t, map[int]string{900001: "test:error.test.one"}, r.GetAll())

	// same code and key is idempotent
	assert.NotPanics(t, func() { r.Register(New(90, 1, "test", "error.test.one", "again")) })
}

func TestRegistry_Conflict(t *testing.T) {
	r := NewRegistry()
	r.Register(New(90, 1, "test", "error.test.one", "one"))

	assert.Panics(t, func() {
		r.Register(New(90, 1, "test", "error.test.two", "two"))
	})
}
