package services

import (
	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/config"
	"github.com/coldreach/warmstack/internal/dnsclient"
	"github.com/coldreach/warmstack/internal/logger"
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/services/blacklist"
	"github.com/coldreach/warmstack/services/content"
	"github.com/coldreach/warmstack/services/dnscheck"
	"github.com/coldreach/warmstack/services/events"
	"github.com/coldreach/warmstack/services/reports"
	"github.com/coldreach/warmstack/services/smtp"
	"github.com/coldreach/warmstack/services/warmup"
)

type Services struct {
	EventPublisher   interfaces.EventPublisher
	EmailSender      interfaces.EmailSender
	ContentService   interfaces.ContentService
	WarmupService    *warmup.Service
	DNSCheckService  interfaces.DNSCheckService
	BlacklistService interfaces.BlacklistService
	ReportExporter   *reports.Exporter
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	// events; without a broker URL status changes and alerts are logged and dropped
	var publisher interfaces.EventPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		rabbitPublisher, err := events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log, nil)
		if err != nil {
			return nil, err
		}
		publisher = rabbitPublisher
	} else {
		log.Warn("no RabbitMQ URL configured, using no-op event publisher")
		publisher = events.NewNoopPublisher(log)
	}

	sender := smtp.NewEmailSender(log)
	contentService := content.NewContentService(log, content.NewProvider(cfg.AIConfig), nil)
	resolver := dnsclient.New(cfg.AppConfig.DNSServer)

	services := Services{
		EventPublisher:   publisher,
		EmailSender:      sender,
		ContentService:   contentService,
		WarmupService:    warmup.NewService(log, repos, sender, contentService, publisher, cfg.AppConfig.TrackingPublicUrl, nil),
		DNSCheckService:  dnscheck.NewDNSCheckService(log, repos, resolver, publisher),
		BlacklistService: blacklist.NewBlacklistService(log, repos, resolver, publisher),
		ReportExporter:   reports.NewExporter(log, repos),
	}

	return &services, nil
}
