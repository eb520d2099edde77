package configs

import "github.com/spf13/viper"

// MailConfig is the outbound SMTP endpoint the mail worker uses to drain the
// folivafy-mail system collection (§6, FOLIVAFY_MAIL_*).
type MailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"     rule:"min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	// CronIntervalMinutes is FOLIVAFY_CRON_INTERVAL: how often the mail
	// worker ticks to drain pending messages.
	CronIntervalMinutes int `mapstructure:"cron_interval_minutes" rule:"min=1"`
}

func (c *MailConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.user", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "no-reply@folivafy.local")
	v.SetDefault("mail.cron_interval_minutes", 5)
}
