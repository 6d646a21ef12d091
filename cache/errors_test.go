package cache

import (
	"errors"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		err     error
		wantMsg string
	}{
		{ErrCacheMiss, "缓存未命中"},
		{ErrCodec, "缓存条目编解码失败"},
		{ErrBackend, "缓存后端错误"},
		{ErrClosed, "缓存已关闭"},
		{ErrConfigInvalid, "缓存配置无效"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			if tt.err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", tt.err.Error(), tt.wantMsg)
			}
		})
	}
	if ErrCacheMiss.Code() != 700001 || ErrConfigInvalid.Code() != 700005 {
		t.Errorf("unexpected codes %d %d", ErrCacheMiss.Code(), ErrConfigInvalid.Code())
	}
}

func TestErrors_WrappedStillMatch(t *testing.T) {
	wrapped := ErrBackend.Wrapf(errors.New("connection refused"), "redis GET %s", "k")
	if !errors.Is(wrapped, ErrBackend) {
		t.Error("errors.Is(wrapped, ErrBackend) = false, want true")
	}
	if errors.Is(wrapped, ErrCacheMiss) {
		t.Error("errors.Is(wrapped, ErrCacheMiss) = true, want false")
	}
}
