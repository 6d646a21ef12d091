package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// BackendSection Hiera 配置文件中本后端的配置段名
const BackendSection = "ic_yaml"

// FileSource 配置文件数据源
//
// 同时接受两种写法：
//
//	datadir: /srv/hiera          # 扁平写法
//	:ic_yaml:                    # Hiera 写法，key 可带前导冒号
//	  :datadir: /srv/hiera
//
// 后端配置段中的值覆盖顶层同名值
type FileSource struct {
	path     string
	priority int
	required bool
}

// NewFileSource 文件不存在时视为空配置
func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{path: path, priority: priority}
}

// Required 文件不存在时报错，用于用户显式指定的配置文件
func (s *FileSource) Required() *FileSource {
	s.required = true
	return s
}

func (s *FileSource) Name() string  { return "file:" + s.path }
func (s *FileSource) Priority() int { return s.priority }
func (s *FileSource) Path() string  { return s.path }

func (s *FileSource) Load() (map[string]interface{}, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !s.required {
			return map[string]interface{}{}, nil
		}
		return nil, ErrConfigRead.Wrapf(err, "访问配置文件失败 %s", s.path)
	}

	// 格式由扩展名决定
	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, ErrConfigRead.Wrapf(err, "读取配置文件失败 %s", s.path)
	}

	settings := normalizeKeys(v.AllSettings())
	section, _ := settings[BackendSection].(map[string]interface{})
	delete(settings, BackendSection)

	out := make(map[string]interface{})
	flatten(out, "", settings)
	flatten(out, "", section)
	return out, nil
}

// normalizeKeys 去掉 Hiera 风格 key 的前导冒号
func normalizeKeys(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]interface{}); ok {
			v = normalizeKeys(nested)
		}
		out[strings.TrimPrefix(k, ":")] = v
	}
	return out
}

// flatten {"cache": {"store": "redis"}} -> {"cache.store": "redis"}
func flatten(dst map[string]interface{}, prefix string, m map[string]interface{}) {
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flatten(dst, k, nested)
			continue
		}
		dst[k] = v
	}
}
