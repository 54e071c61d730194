package dto

type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id        string      `json:"id"`
	MailboxID string      `json:"mailboxId"`
	EventType string      `json:"eventType"`
	Data      interface{} `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uber-trace-id"`
	AppSource   string `json:"appSource"`
	Timestamp   string `json:"timestamp"`
}

type WarmupStatusChanged struct {
	MailboxID  string `json:"mailboxId"`
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
}

type WarmupAlertRaised struct {
	AlertID   string `json:"alertId"`
	MailboxID string `json:"mailboxId,omitempty"`
	AlertType string `json:"alertType"`
	Severity  string `json:"severity"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}
