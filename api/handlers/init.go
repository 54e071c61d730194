package handlers

import (
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/services"
)

type APIHandlers struct {
	Mailboxes *MailboxesHandler
	Warmup    *WarmupHandler
	Checks    *ChecksHandler
	Alerts    *AlertsHandler
	Profiles  *ProfilesHandler
	Tracking  *TrackingHandler
	Reports   *ReportsHandler
}

func InitHandlers(s *services.Services, repos *repository.Repositories) *APIHandlers {
	return &APIHandlers{
		Mailboxes: NewMailboxesHandler(s, repos),
		Warmup:    NewWarmupHandler(s, repos),
		Checks:    NewChecksHandler(s),
		Alerts:    NewAlertsHandler(repos),
		Profiles:  NewProfilesHandler(repos),
		Tracking:  NewTrackingHandler(s),
		Reports:   NewReportsHandler(s),
	}
}
