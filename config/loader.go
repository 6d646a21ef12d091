package config

import (
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader 配置加载器（支持多数据源，按优先级覆盖）
type Loader struct {
	sources      []ConfigSource
	mergedConfig map[string]interface{} // 合并后的扁平配置
	v            *viper.Viper
	loadedFiles  []string
}

// NewLoader 创建配置加载器
func NewLoader() *Loader {
	return &Loader{
		sources:      make([]ConfigSource, 0),
		mergedConfig: make(map[string]interface{}),
		v:            viper.New(),
	}
}

// AddSource 添加数据源
func (l *Loader) AddSource(source ConfigSource) {
	l.sources = append(l.sources, source)
}

// Load 加载并合并所有数据源
func (l *Loader) Load() error {
	// 1. 按优先级从低到高排序，同优先级保持添加顺序
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	// 2. 依次加载，高优先级覆盖低优先级
	l.mergedConfig = make(map[string]interface{})
	l.loadedFiles = l.loadedFiles[:0]
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return ErrConfigRead.Wrapf(err, "加载数据源 %s 失败", source.Name())
		}

		if fileSource, ok := source.(*FileSource); ok && len(data) > 0 {
			l.loadedFiles = append(l.loadedFiles, fileSource.Path())
		}

		for key, value := range data {
			l.mergedConfig[key] = value
		}
	}

	// 3. 同步到 Viper，供 Unmarshal 使用
	l.syncToViper()

	return nil
}

// syncToViper 将合并结果写入新的 Viper 实例
func (l *Loader) syncToViper() {
	nested := unflattenMap(l.mergedConfig)

	l.v = viper.New()
	for key, value := range nested {
		l.v.Set(key, value)
	}
}

// unflattenMap 扁平 map 转嵌套 map
// 例如：{"cache.store": "redis"} -> {"cache": {"store": "redis"}}
func unflattenMap(flat map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	// 先短后长，保证子 key 覆盖父 key 上的标量
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		setNestedValue(result, splitKey(key), flat[key])
	}

	return result
}

func setNestedValue(m map[string]interface{}, keys []string, value interface{}) {
	if len(keys) == 0 {
		return
	}

	current := m
	for _, k := range keys[:len(keys)-1] {
		nested, ok := current[k].(map[string]interface{})
		if !ok {
			nested = make(map[string]interface{})
			current[k] = nested
		}
		current = nested
	}

	current[keys[len(keys)-1]] = value
}

// splitKey 按点号切分，忽略空段
func splitKey(key string) []string {
	parts := strings.Split(key, ".")
	result := parts[:0]
	for _, p := range parts {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// Unmarshal 解析配置到结构体
func (l *Loader) Unmarshal(v interface{}) error {
	if err := l.v.Unmarshal(v); err != nil {
		return ErrConfigDecode.Wrap(err)
	}
	return nil
}

// Get 获取配置值
func (l *Loader) Get(key string) interface{} {
	return l.v.Get(key)
}

// GetString 获取字符串配置
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// IsSet 配置项是否存在
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// AllSettings 获取全部配置
func (l *Loader) AllSettings() map[string]interface{} {
	return l.v.AllSettings()
}

// LoadedFiles 已加载的配置文件列表
func (l *Loader) LoadedFiles() []string {
	return l.loadedFiles
}

// Reload 重新加载
func (l *Loader) Reload() error {
	return l.Load()
}
