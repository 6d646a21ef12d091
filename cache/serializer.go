package cache

import (
	"gopkg.in/yaml.v3"
)

// Serializer 缓存条目编码
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
	Name() string
}

// YAMLSerializer 以 YAML 编码条目
// 条目在 redis-cli 中可读，并保留文档的 key 顺序
type YAMLSerializer struct{}

// NewYAMLSerializer creates a YAML serializer
func NewYAMLSerializer() *YAMLSerializer {
	return &YAMLSerializer{}
}

func (s *YAMLSerializer) Serialize(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, ErrCodec.Wrapf(err, "编码缓存条目失败")
	}
	return data, nil
}

func (s *YAMLSerializer) Deserialize(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return ErrCodec.Wrapf(err, "解码缓存条目失败")
	}
	return nil
}

func (s *YAMLSerializer) Name() string {
	return "yaml"
}
