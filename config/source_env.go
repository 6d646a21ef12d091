package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvSource 环境变量数据源
//
// 绑定过 key 时只读取绑定的变量（cache.redis_addr -> HIERA_CACHE_REDIS_ADDR），
// 空值视为未设置；没有绑定时扫描所有带前缀的变量
type EnvSource struct {
	prefix   string
	priority int
	v        *viper.Viper
	keys     []string
}

// NewEnvSource prefix 如 "HIERA"
func NewEnvSource(prefix string, priority int) *EnvSource {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return &EnvSource{prefix: prefix, priority: priority, v: v}
}

// AddBinding 把 key 绑定到指定变量名，缺少前缀时自动补上
func (s *EnvSource) AddBinding(key, envKey string) *EnvSource {
	if s.prefix != "" && !strings.HasPrefix(envKey, s.prefix+"_") {
		envKey = s.prefix + "_" + envKey
	}
	_ = s.v.BindEnv(key, envKey)
	s.keys = append(s.keys, key)
	return s
}

// BindKeys 按命名规则绑定
func (s *EnvSource) BindKeys(keys ...string) *EnvSource {
	for _, key := range keys {
		_ = s.v.BindEnv(key)
		s.keys = append(s.keys, key)
	}
	return s
}

func (s *EnvSource) Name() string  { return "env:" + s.prefix }
func (s *EnvSource) Priority() int { return s.priority }

func (s *EnvSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})

	if len(s.keys) > 0 {
		for _, key := range s.keys {
			if s.v.IsSet(key) {
				result[key] = s.v.Get(key)
			}
		}
		return result, nil
	}

	if s.prefix == "" {
		return result, nil
	}

	// HIERA_CACHE_STORE -> cache.store
	prefix := s.prefix + "_"
	for _, env := range os.Environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, prefix)), "_", ".")
		result[key] = value
	}
	return result, nil
}
