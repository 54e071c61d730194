package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Daily warmup assessment, shortly after midnight
	CronScheduleDailyAssessment string `env:"CRON_SCHEDULE_DAILY_ASSESSMENT" envDefault:"0 5 0 * * *"`
	// Peer warmup sends, hourly inside business hours
	CronSchedulePeerWarmup string `env:"CRON_SCHEDULE_PEER_WARMUP" envDefault:"0 0 9-17 * * *"`
	// Auto replies, offset half an hour from peer sends
	CronScheduleAutoReply string `env:"CRON_SCHEDULE_AUTO_REPLY" envDefault:"0 30 9-17 * * *"`
	// Daily quota reset at midnight
	CronScheduleQuotaReset string `env:"CRON_SCHEDULE_QUOTA_RESET" envDefault:"0 0 0 * * *"`
	// DNS configuration checks, twice a day
	CronScheduleDNSChecks string `env:"CRON_SCHEDULE_DNS_CHECKS" envDefault:"0 15 */12 * * *"`
	// Blacklist checks, twice a day offset from DNS checks
	CronScheduleBlacklistChecks string `env:"CRON_SCHEDULE_BLACKLIST_CHECKS" envDefault:"0 45 */12 * * *"`
	// Daily stats snapshot, just before midnight
	CronScheduleDailySnapshot string `env:"CRON_SCHEDULE_DAILY_SNAPSHOT" envDefault:"0 55 23 * * *"`
	// Recovery check for paused mailboxes, every morning
	CronScheduleRecoveryCheck string `env:"CRON_SCHEDULE_RECOVERY_CHECK" envDefault:"0 0 6 * * *"`
}
