package enum

type WarmupStatus string

const (
	WarmupStatusInactive    WarmupStatus = "inactive"
	WarmupStatusWarmingUp   WarmupStatus = "warming_up"
	WarmupStatusColdReady   WarmupStatus = "cold_ready"
	WarmupStatusActive      WarmupStatus = "active"
	WarmupStatusPaused      WarmupStatus = "paused"
	WarmupStatusRecovering  WarmupStatus = "recovering"
	WarmupStatusBlacklisted WarmupStatus = "blacklisted"
)

func (t WarmupStatus) String() string {
	return string(t)
}

type WarmupEmailStatus string

const (
	WarmupEmailStatusSent    WarmupEmailStatus = "sent"
	WarmupEmailStatusFailed  WarmupEmailStatus = "failed"
	WarmupEmailStatusBounced WarmupEmailStatus = "bounced"
	WarmupEmailStatusOpened  WarmupEmailStatus = "opened"
	WarmupEmailStatusReplied WarmupEmailStatus = "replied"
)

func (t WarmupEmailStatus) String() string {
	return string(t)
}

type ConnectionStatus string

const (
	ConnectionStatusUntested   ConnectionStatus = "untested"
	ConnectionStatusSuccessful ConnectionStatus = "successful"
	ConnectionStatusFailed     ConnectionStatus = "failed"
)

func (t ConnectionStatus) String() string {
	return string(t)
}

type AlertType string

const (
	AlertTypeStatusChange      AlertType = "status_change"
	AlertTypeHealthDrop        AlertType = "health_drop"
	AlertTypeBlacklistDetected AlertType = "blacklist_detected"
	AlertTypeDNSIssue          AlertType = "dns_issue"
	AlertTypeAutoPaused        AlertType = "auto_paused"
	AlertTypeAutoRecovered     AlertType = "auto_recovered"
	AlertTypeWarmupComplete    AlertType = "warmup_complete"
)

func (t AlertType) String() string {
	return string(t)
}

type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

func (t AlertSeverity) String() string {
	return string(t)
}
