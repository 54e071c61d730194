package warmup

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/logger"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/repository"
)

// Service orchestrates the mailbox warmup lifecycle: assessment, peer
// dispatch, auto-replies, recovery and snapshots. All randomness goes through
// the injected source so tests can supply deterministic sequences.
type Service struct {
	log          logger.Logger
	repositories *repository.Repositories
	sender       interfaces.EmailSender
	content      interfaces.ContentService
	publisher    interfaces.EventPublisher
	trackingURL  string

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewService(
	log logger.Logger,
	repositories *repository.Repositories,
	sender interfaces.EmailSender,
	content interfaces.ContentService,
	publisher interfaces.EventPublisher,
	trackingURL string,
	rng *rand.Rand,
) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		log:          log,
		repositories: repositories,
		sender:       sender,
		content:      content,
		publisher:    publisher,
		trackingURL:  trackingURL,
		rng:          rng,
	}
}

func (s *Service) randFloat() float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64()
}

// randIntn returns a uniform value in [0, n).
func (s *Service) randIntn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

// randRange returns a uniform value in [min, max].
func (s *Service) randRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.randIntn(max-min+1)
}

func (s *Service) shuffleMailboxes(mailboxes []*models.Mailbox) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(len(mailboxes), func(i, j int) {
		mailboxes[i], mailboxes[j] = mailboxes[j], mailboxes[i]
	})
}

// loadConfigFor resolves the global settings and overlays the mailbox's
// assigned profile, if any.
func (s *Service) loadConfigFor(ctx context.Context, mailbox *models.Mailbox) *Config {
	cfg := LoadConfig(ctx, s.repositories.Settings)
	if mailbox != nil && mailbox.WarmupProfileID != nil {
		profile, err := s.repositories.WarmupProfileRepository.GetByID(ctx, *mailbox.WarmupProfileID)
		if err != nil {
			s.log.Warnf("warmup profile %s not found for mailbox %s, using global config", *mailbox.WarmupProfileID, mailbox.ID)
		} else {
			cfg.ApplyProfile(profile)
		}
	}
	return cfg
}

// transition updates the mailbox status, persists it and publishes the change.
func (s *Service) transition(ctx context.Context, mailbox *models.Mailbox, to enum.WarmupStatus) error {
	from := mailbox.WarmupStatus
	if from == to {
		return nil
	}
	mailbox.WarmupStatus = to
	if err := s.repositories.MailboxRepository.SaveMailbox(ctx, mailbox); err != nil {
		return err
	}
	s.publisher.PublishStatusChange(ctx, mailbox.ID, from, to)
	return nil
}

func (s *Service) raiseAlert(ctx context.Context, mailboxID *string, alertType enum.AlertType, severity enum.AlertSeverity, title, message string) {
	alert := &models.WarmupAlert{
		MailboxID: mailboxID,
		AlertType: alertType,
		Severity:  severity,
		Title:     title,
		Message:   message,
	}
	if err := s.repositories.WarmupAlertRepository.Create(ctx, alert); err != nil {
		s.log.Errorf("failed to persist alert %q: %v", title, err)
		return
	}
	s.publisher.PublishAlert(ctx, alert)
}
