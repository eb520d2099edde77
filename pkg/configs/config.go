// Package configs 管理应用程序配置，包括数据库、缓存和服务器的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	import "path/to/configs"
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing DB config:
//
//	config := configs.GetConfig()
//	dbConfig := config.DB
//	dsn := dbConfig.GetDSN()
//	fmt.Println("DSN:", dsn)
package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion 应用程序版本号.
const AppVersion = "dev"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		DB             DBConfig             `mapstructure:"db"`             // 关系存储配置
		KV             KVConfig             `mapstructure:"kv"`             // 缓存/checkpoint 键值存储配置
		Server         ServerConfig         `mapstructure:"server"`         // 日志级别、服务器端口等
		Log            LogConfig            `mapstructure:"log"`            // 日志相关配置
		Tracing        TracingConfig        `mapstructure:"tracing"`        // OpenTelemetry 追踪配置
		Metrics        MetricsConfig        `mapstructure:"metrics"`        // Prometheus 指标配置
		Auth           AuthConfig           `mapstructure:"auth"`           // 承载令牌身份认证配置
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // 出站调用熔断配置
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`     // 入站限流配置
		Deletion       DeletionConfig       `mapstructure:"deletion"`       // 两阶段删除窗口配置
		Mail           MailConfig           `mapstructure:"mail"`           // 邮件 worker 的 SMTP 出口配置
		UserData       UserDataConfig       `mapstructure:"userdata"`       // 身份提供方查询配置
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
func InitConfig(path string) error {
	appViper = viper.New()
	// 设置默认值
	setAllDefaults(appViper)

	if path != "" {
		// 检查path是否是文件
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			// 是文件，使用SetConfigFile，Viper会自动检测类型
			appViper.SetConfigFile(path)
		} else {
			// 是目录，设置配置名和路径
			appViper.SetConfigName("config")
			appViper.AddConfigPath(path)
			appViper.AddConfigPath(path + "/configs")

			exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

			for _, ext := range exts {
				cfg := filepath.Join(path, "config."+ext)
				if _, err := os.Stat(cfg); err == nil {
					appViper.SetConfigFile(cfg)

					break
				}
			}
		}
	}

	appViper.AutomaticEnv()
	appViper.SetEnvPrefix("FOLIVAFY")

	bindEnvAliases(appViper)

	// 读取配置；没有配置文件时回退到环境变量与默认值.
	if err := appViper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 解析到全局配置
	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(appViper)

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// bindEnvAliases 把 §6 列出的裸环境变量名绑定到内部配置键上，这些变量不遵循
// FOLIVAFY_ 前缀加点号路径的常规映射（PORT 没有前缀；*_DATABASE / *_JWT_ISSUER /
// *_CRON_INTERVAL / *_ENABLE_DELETION 是扁平名字，不是嵌套路径）.
func bindEnvAliases(v *viper.Viper) {
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("db.dsn_override", "FOLIVAFY_DATABASE")
	_ = v.BindEnv("auth.issuer", "FOLIVAFY_JWT_ISSUER")
	_ = v.BindEnv("mail.cron_interval_minutes", "FOLIVAFY_CRON_INTERVAL")
	_ = v.BindEnv("deletion.raw_rules", "FOLIVAFY_ENABLE_DELETION")
}

// applyEnvOverrides 处理不能直接 Unmarshal 进结构体的别名环境变量.
func applyEnvOverrides(v *viper.Viper) {
	if raw := v.GetString("deletion.raw_rules"); raw != "" {
		globalConfig.Deletion.Rules = ParseDeletionRules(raw)
	}
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var (
		serverConfig ServerConfig
		dbConfig     DBConfig
		kvConfig     KVConfig
		logConfig    LogConfig
		tracingCfg   TracingConfig
		metricsCfg   MetricsConfig
		authCfg      AuthConfig
		cbCfg        CircuitBreakerConfig
		rlCfg        RateLimitConfig
		deletionCfg  DeletionConfig
		mailCfg      MailConfig
		userDataCfg  UserDataConfig
	)

	serverConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	kvConfig.setDefaults(v)
	logConfig.setDefaults(v)
	tracingCfg.setDefaults(v)
	metricsCfg.setDefaults(v)
	authCfg.setDefaults(v)
	cbCfg.setDefaults(v)
	rlCfg.setDefaults(v)
	deletionCfg.setDefaults(v)
	mailCfg.setDefaults(v)
	userDataCfg.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)
		fmt.Println("Reloading configuration...")

		if err := v.Unmarshal(&globalConfig); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
		}

		applyEnvOverrides(v)
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

func GetViper() *viper.Viper {
	return appViper
}
