package config

// Config represents the full application configuration.
type Config struct {
	GitLab        GitLabConfig        `yaml:"gitlab"`
	HTTP          HTTPConfig          `yaml:"http"`
	Mirror        MirrorConfig        `yaml:"mirror"`
	Cache         CacheConfig         `yaml:"cache"`
	Server        ServerConfig        `yaml:"server"`
	Output        OutputConfig        `yaml:"output"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// GitLabConfig holds upstream API settings.
type GitLabConfig struct {
	// Token is the default access token, used when a request carries none.
	Token string `yaml:"token"`
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// MirrorConfig configures the local mirror source. When enabled, repository
// data comes from bare clones under Dir instead of the REST API.
type MirrorConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Dir          string `yaml:"dir"`
	CloneTimeout string `yaml:"cloneTimeout"`
	FetchTimeout string `yaml:"fetchTimeout"`
}

// CacheConfig configures the commit list cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	TTL     string `yaml:"ttl"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	RequestTimeout string `yaml:"requestTimeout"`
}

// OutputConfig configures report writing.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// ObservabilityConfig configures logging and metrics.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Level        string `yaml:"level"`  // debug, info, error
	Format       string `yaml:"format"` // json, human
	RedactTokens bool   `yaml:"redactTokens"`
}

// MetricsConfig configures request metrics tracking.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.GitLab = chooseGitLab(base.GitLab, overlay.GitLab)
	result.HTTP = chooseHTTP(base.HTTP, overlay.HTTP)
	result.Mirror = chooseMirror(base.Mirror, overlay.Mirror)
	result.Cache = chooseCache(base.Cache, overlay.Cache)
	result.Server = chooseServer(base.Server, overlay.Server)
	result.Output = chooseOutput(base.Output, overlay.Output)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)

	return result
}

func chooseGitLab(base, overlay GitLabConfig) GitLabConfig {
	if overlay.Token != "" {
		return overlay
	}
	return base
}

func chooseHTTP(base, overlay HTTPConfig) HTTPConfig {
	if overlay.Timeout != "" || overlay.MaxRetries != 0 || overlay.InitialBackoff != "" || overlay.MaxBackoff != "" || overlay.BackoffMultiplier != 0 {
		return overlay
	}
	return base
}

func chooseMirror(base, overlay MirrorConfig) MirrorConfig {
	if overlay.Enabled || overlay.Dir != "" || overlay.CloneTimeout != "" || overlay.FetchTimeout != "" {
		return overlay
	}
	return base
}

func chooseCache(base, overlay CacheConfig) CacheConfig {
	if overlay.Enabled || overlay.Path != "" || overlay.TTL != "" {
		return overlay
	}
	return base
}

func chooseServer(base, overlay ServerConfig) ServerConfig {
	if overlay.Addr != "" || overlay.RequestTimeout != "" {
		return overlay
	}
	return base
}

func chooseOutput(base, overlay OutputConfig) OutputConfig {
	if overlay.Directory != "" {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base

	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	if overlay.Metrics.Enabled {
		result.Metrics = overlay.Metrics
	}

	return result
}
