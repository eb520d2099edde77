package configs

import "github.com/spf13/viper"

// UserDataConfig points at the external identity provider lookup used to
// enrich event actor UUIDs with a display name on single-document reads
// (§6, USERDATA_*). Lookups degrade to the bare UUID on failure — this
// client is circuit-broken, never load-bearing for correctness.
type UserDataConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	// TimeoutMS bounds a single lookup's HTTP request. A single-document
	// read does one lookup per event, so its total wait can exceed this.
	TimeoutMS int `mapstructure:"timeout_ms" rule:"min=1"`
}

func (c *UserDataConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("userdata.enabled", false)
	v.SetDefault("userdata.base_url", "")
	v.SetDefault("userdata.api_key", "")
	v.SetDefault("userdata.timeout_ms", 1500)
}
