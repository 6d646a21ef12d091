package config

// ConfigSource 配置数据源
// 文件、环境变量、命令行参数都实现该接口
type ConfigSource interface {
	// Name 数据源名称（用于日志和错误信息）
	Name() string

	// Priority 优先级，数值越大越优先
	// 建议取值：
	// - 默认值: 1
	// - 配置文件 (hiera.yaml): 10
	// - 环境变量: 50
	// - 命令行参数: 100
	Priority() int

	// Load 加载配置数据，key 以点号分隔，如 "cache.redis_addr"
	Load() (map[string]interface{}, error)
}

// MapSource 内存中的配置数据源，用于默认值和测试
type MapSource struct {
	name     string
	data     map[string]interface{}
	priority int
}

// NewMapSource 创建内存数据源，嵌套 map 会被展平
func NewMapSource(name string, data map[string]interface{}, priority int) *MapSource {
	flat := make(map[string]interface{})
	flatten(flat, "", data)
	return &MapSource{name: name, data: flat, priority: priority}
}

// Name 数据源名称
func (s *MapSource) Name() string {
	return s.name
}

// Priority 优先级
func (s *MapSource) Priority() int {
	return s.priority
}

// Load 返回数据副本
func (s *MapSource) Load() (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out, nil
}
