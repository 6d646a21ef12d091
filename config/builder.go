package config

// 数据源优先级
const (
	PriorityDefaults = 1
	PriorityFile     = 10
	PriorityEnv      = 50
	PriorityFlags    = 100
)

// DefaultConfigFile 未指定配置文件时在当前目录查找
const DefaultConfigFile = "hiera.yaml"

// LoaderBuilder 配置加载器构建器
type LoaderBuilder struct {
	defaults   map[string]interface{}
	configFile string
	envPrefix  string
	envKeys    []string
	flags      interface{}
}

// NewLoaderBuilder 创建构建器
func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{}
}

// WithDefaults 默认值（优先级 1）
func (b *LoaderBuilder) WithDefaults(defaults map[string]interface{}) *LoaderBuilder {
	b.defaults = defaults
	return b
}

// WithConfigFile 指定配置文件，指定后文件必须存在
func (b *LoaderBuilder) WithConfigFile(path string) *LoaderBuilder {
	b.configFile = path
	return b
}

// WithEnvPrefix 环境变量前缀；传入 keys 时只读取这些 key 对应的变量
func (b *LoaderBuilder) WithEnvPrefix(prefix string, keys ...string) *LoaderBuilder {
	b.envPrefix = prefix
	b.envKeys = keys
	return b
}

// WithFlags 命令行参数结构体
func (b *LoaderBuilder) WithFlags(flags interface{}) *LoaderBuilder {
	b.flags = flags
	return b
}

// Build 构建并加载
func (b *LoaderBuilder) Build() (*Loader, error) {
	loader := NewLoader()

	// 1. 默认值 (priority 1)
	if len(b.defaults) > 0 {
		loader.AddSource(NewMapSource("defaults", b.defaults, PriorityDefaults))
	}

	// 2. 配置文件 (priority 10)
	if b.configFile != "" {
		loader.AddSource(NewFileSource(b.configFile, PriorityFile).Required())
	} else {
		loader.AddSource(NewFileSource(DefaultConfigFile, PriorityFile))
	}

	// 3. 环境变量 (priority 50)
	if b.envPrefix != "" {
		loader.AddSource(NewEnvSource(b.envPrefix, PriorityEnv).BindKeys(b.envKeys...))
	}

	// 4. 命令行参数 (priority 100)
	if b.flags != nil {
		loader.AddSource(NewFlagSource(b.flags, PriorityFlags))
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}

	return loader, nil
}
