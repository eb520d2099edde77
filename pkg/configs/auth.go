package configs

import "github.com/spf13/viper"

// AuthConfig 控制承载令牌（bearer token）身份认证。令牌的签名校验是外部协作者
// 的职责（§1）；这里只负责解析声明（sub、roles）并核对 issuer.
type AuthConfig struct {
	Enabled       bool     `mapstructure:"enabled"`         // 开启认证校验
	Issuer        string   `mapstructure:"issuer"           rule:"required_if=Enabled true"` // FOLIVAFY_JWT_ISSUER
	SkipPaths     []string `mapstructure:"skip_paths"`      // 跳过认证的路径前缀（如 /metrics、/api/v1/health）
	DevAllowQuery bool     `mapstructure:"dev_allow_query"` // 开发模式允许用 ?user= 便于本地调试
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.dev_allow_query", false)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/swagger",
	})
}
