package config

import "testing"

func TestMerge_OverlayWins(t *testing.T) {
	base := Config{
		GitLab: GitLabConfig{Token: "base-token"},
		Server: ServerConfig{Addr: ":8080"},
	}
	overlay := Config{
		GitLab: GitLabConfig{Token: "overlay-token"},
	}

	merged := Merge(base, overlay)

	if merged.GitLab.Token != "overlay-token" {
		t.Errorf("token = %q, want overlay value", merged.GitLab.Token)
	}
	if merged.Server.Addr != ":8080" {
		t.Errorf("addr = %q, base value should survive an empty overlay", merged.Server.Addr)
	}
}

func TestMerge_EmptyOverlayKeepsBase(t *testing.T) {
	base := Config{
		HTTP:   HTTPConfig{Timeout: "45s", MaxRetries: 5},
		Cache:  CacheConfig{Enabled: true, Path: "/tmp/cache.db", TTL: "5m"},
		Mirror: MirrorConfig{Enabled: true, Dir: "/tmp/mirrors"},
	}

	merged := Merge(base, Config{})

	if merged.HTTP.Timeout != "45s" {
		t.Errorf("HTTP.Timeout = %q, want base value", merged.HTTP.Timeout)
	}
	if !merged.Cache.Enabled || merged.Cache.Path != "/tmp/cache.db" {
		t.Errorf("Cache = %+v, want base value", merged.Cache)
	}
	if !merged.Mirror.Enabled {
		t.Errorf("Mirror = %+v, want base value", merged.Mirror)
	}
}

func TestMerge_ObservabilitySections(t *testing.T) {
	base := Config{
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Enabled: true, Level: "info", Format: "human"},
			Metrics: MetricsConfig{Enabled: true},
		},
	}
	overlay := Config{
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Enabled: true, Level: "debug", Format: "json"},
		},
	}

	merged := Merge(base, overlay)

	if merged.Observability.Logging.Level != "debug" {
		t.Errorf("logging level = %q, want overlay value", merged.Observability.Logging.Level)
	}
	if !merged.Observability.Metrics.Enabled {
		t.Error("metrics should survive when the overlay leaves them unset")
	}
}

func TestMerge_MultipleLayers(t *testing.T) {
	first := Config{GitLab: GitLabConfig{Token: "first"}}
	second := Config{GitLab: GitLabConfig{Token: "second"}}
	third := Config{Output: OutputConfig{Directory: "reports"}}

	merged := Merge(first, second, third)

	if merged.GitLab.Token != "second" {
		t.Errorf("token = %q, want the last non-empty layer", merged.GitLab.Token)
	}
	if merged.Output.Directory != "reports" {
		t.Errorf("output dir = %q, want reports", merged.Output.Directory)
	}
}
