package warmup

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/errors"
	"github.com/coldreach/warmstack/internal/logger"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/internal/utils"
	"github.com/coldreach/warmstack/services/events"
)

func newTestLogger() logger.Logger {
	l := logger.NewAppLogger(&logger.Config{DevMode: true, Encoder: "console", LogLevel: "error"})
	l.InitLogger()
	return l
}

type memMailboxRepo struct {
	mu          sync.Mutex
	mailboxes   map[string]*models.Mailbox
	resetCalled int
}

func newMemMailboxRepo(mailboxes ...*models.Mailbox) *memMailboxRepo {
	r := &memMailboxRepo{mailboxes: map[string]*models.Mailbox{}}
	for _, mb := range mailboxes {
		if mb.ID == "" {
			mb.ID = utils.GenerateNanoIDWithPrefix("mbox", 16)
		}
		r.mailboxes[mb.ID] = mb
	}
	return r
}

// Reads hand out detached copies, the same way a fresh SELECT hydrates
// new rows. Mutating a returned struct never touches the stored record.
func (r *memMailboxRepo) GetMailboxes(ctx context.Context) ([]*models.Mailbox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Mailbox, 0, len(r.mailboxes))
	for _, mb := range r.mailboxes {
		row := *mb
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memMailboxRepo) GetMailbox(ctx context.Context, id string) (*models.Mailbox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.mailboxes[id]
	if !ok {
		return nil, errors.ErrMailboxNotFound
	}
	row := *mb
	return &row, nil
}

func (r *memMailboxRepo) GetMailboxByEmailAddress(ctx context.Context, emailAddress string) (*models.Mailbox, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mb := range r.mailboxes {
		if mb.EmailAddress == emailAddress {
			row := *mb
			return &row, nil
		}
	}
	return nil, errors.ErrMailboxNotFound
}

func (r *memMailboxRepo) GetMailboxesByStatus(ctx context.Context, statuses ...enum.WarmupStatus) ([]*models.Mailbox, error) {
	all, _ := r.GetMailboxes(ctx)
	var out []*models.Mailbox
	for _, mb := range all {
		for _, status := range statuses {
			if mb.WarmupStatus == status {
				out = append(out, mb)
				break
			}
		}
	}
	return out, nil
}

func (r *memMailboxRepo) GetActiveMailboxes(ctx context.Context) ([]*models.Mailbox, error) {
	all, _ := r.GetMailboxes(ctx)
	var out []*models.Mailbox
	for _, mb := range all {
		if mb.IsActive {
			out = append(out, mb)
		}
	}
	return out, nil
}

func (r *memMailboxRepo) SaveMailbox(ctx context.Context, mailbox *models.Mailbox) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mailbox.ID == "" {
		mailbox.ID = utils.GenerateNanoIDWithPrefix("mbox", 16)
	}
	if existing, ok := r.mailboxes[mailbox.ID]; ok {
		*existing = *mailbox
		return nil
	}
	r.mailboxes[mailbox.ID] = mailbox
	return nil
}

func (r *memMailboxRepo) DeactivateMailbox(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.mailboxes[id]
	if !ok {
		return errors.ErrMailboxNotFound
	}
	mb.IsActive = false
	return nil
}

func (r *memMailboxRepo) IncrementSendCounters(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.mailboxes[id]
	if !ok {
		return errors.ErrMailboxNotFound
	}
	if mb.EmailsSentToday >= mb.DailySendLimit {
		return errors.ErrQuotaExceeded
	}
	mb.EmailsSentToday++
	mb.TotalEmailsSent++
	mb.WarmupEmailsSent++
	return nil
}

func (r *memMailboxRepo) IncrementReceivedCounter(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.mailboxes[id]
	if !ok {
		return errors.ErrMailboxNotFound
	}
	mb.WarmupEmailsReceived++
	return nil
}

func (r *memMailboxRepo) IncrementReplyCounters(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.mailboxes[id]
	if !ok {
		return errors.ErrMailboxNotFound
	}
	mb.ReplyCount++
	mb.WarmupReplies++
	return nil
}

func (r *memMailboxRepo) IncrementOpenCounter(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mb, ok := r.mailboxes[id]
	if !ok {
		return errors.ErrMailboxNotFound
	}
	mb.WarmupOpens++
	return nil
}

func (r *memMailboxRepo) ResetDailyCounters(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetCalled++
	var reset int64
	for _, mb := range r.mailboxes {
		if mb.EmailsSentToday > 0 {
			mb.EmailsSentToday = 0
			reset++
		}
	}
	return reset, nil
}

type memWarmupEmailRepo struct {
	mu     sync.Mutex
	emails []*models.WarmupEmail
}

func (r *memWarmupEmailRepo) Create(ctx context.Context, email *models.WarmupEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if email.ID == "" {
		email.ID = utils.GenerateNanoIDWithPrefix("wml", 16)
	}
	if email.TrackingID == "" {
		email.TrackingID = utils.GenerateTrackingID()
	}
	r.emails = append(r.emails, email)
	return nil
}

func (r *memWarmupEmailRepo) GetByID(ctx context.Context, id string) (*models.WarmupEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.emails {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.ErrWarmupEmailNotFound
}

func (r *memWarmupEmailRepo) GetByTrackingID(ctx context.Context, trackingID string) (*models.WarmupEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.emails {
		if e.TrackingID == trackingID {
			return e, nil
		}
	}
	return nil, errors.ErrWarmupEmailNotFound
}

func (r *memWarmupEmailRepo) List(ctx context.Context, filter interfaces.WarmupEmailFilter) ([]*models.WarmupEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WarmupEmail
	for _, e := range r.emails {
		if filter.SenderMailboxID != "" && e.SenderMailboxID != filter.SenderMailboxID {
			continue
		}
		if filter.ReceiverMailboxID != "" && (e.ReceiverMailboxID == nil || *e.ReceiverMailboxID != filter.ReceiverMailboxID) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memWarmupEmailRepo) GetReplyCandidates(ctx context.Context, now time.Time, staleBefore time.Time) ([]*models.WarmupEmail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WarmupEmail
	for _, e := range r.emails {
		if e.Status != enum.WarmupEmailStatusSent || e.RepliedAt != nil || e.ReceiverMailboxID == nil {
			continue
		}
		if e.ReplyEligibleAt == nil || e.ReplyEligibleAt.After(now) {
			continue
		}
		if e.SentAt.Before(staleBefore) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memWarmupEmailRepo) MarkReplied(ctx context.Context, id string, at time.Time) error {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.RepliedAt != nil {
		return errors.ErrAlreadyReplied
	}
	e.RepliedAt = &at
	e.Status = enum.WarmupEmailStatusReplied
	return nil
}

func (r *memWarmupEmailRepo) MarkOpened(ctx context.Context, id string, at time.Time) (bool, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.OpenedAt != nil {
		return false, nil
	}
	e.OpenedAt = &at
	if e.Status == enum.WarmupEmailStatusSent {
		e.Status = enum.WarmupEmailStatusOpened
	}
	return true, nil
}

func (r *memWarmupEmailRepo) CountSentSince(ctx context.Context, mailboxID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.emails {
		if e.SenderMailboxID == mailboxID && !e.SentAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type memAlertRepo struct {
	mu     sync.Mutex
	alerts []*models.WarmupAlert
}

func (r *memAlertRepo) Create(ctx context.Context, alert *models.WarmupAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if alert.ID == "" {
		alert.ID = utils.GenerateNanoIDWithPrefix("alr", 16)
	}
	r.alerts = append(r.alerts, alert)
	return nil
}

func (r *memAlertRepo) List(ctx context.Context, unreadOnly bool, limit int) ([]*models.WarmupAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WarmupAlert
	for _, a := range r.alerts {
		if unreadOnly && a.IsRead {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memAlertRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ID == id {
			a.IsRead = true
			return nil
		}
	}
	return fmt.Errorf("alert %s not found", id)
}

func (r *memAlertRepo) MarkAllRead(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.alerts {
		if !a.IsRead {
			a.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *memAlertRepo) CountUnread(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.alerts {
		if !a.IsRead {
			n++
		}
	}
	return n, nil
}

type memDailyLogRepo struct {
	mu   sync.Mutex
	logs []*models.WarmupDailyLog
}

func (r *memDailyLogRepo) CreateIfAbsent(ctx context.Context, log *models.WarmupDailyLog) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.logs {
		if existing.MailboxID == log.MailboxID && existing.LogDate.Equal(log.LogDate) {
			return false, nil
		}
	}
	if log.ID == "" {
		log.ID = utils.GenerateNanoIDWithPrefix("wdl", 16)
	}
	r.logs = append(r.logs, log)
	return true, nil
}

func (r *memDailyLogRepo) ListSince(ctx context.Context, mailboxIDs []string, since time.Time) ([]*models.WarmupDailyLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WarmupDailyLog
	for _, log := range r.logs {
		if log.LogDate.Before(since) {
			continue
		}
		if len(mailboxIDs) > 0 {
			match := false
			for _, id := range mailboxIDs {
				if log.MailboxID == id {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, log)
	}
	return out, nil
}

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.WarmupProfile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: map[string]*models.WarmupProfile{}}
}

func (r *memProfileRepo) Create(ctx context.Context, profile *models.WarmupProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID == "" {
		profile.ID = utils.GenerateNanoIDWithPrefix("wpr", 16)
	}
	r.profiles[profile.ID] = profile
	return nil
}

func (r *memProfileRepo) GetByID(ctx context.Context, id string) (*models.WarmupProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, errors.ErrProfileNotFound
	}
	return p, nil
}

func (r *memProfileRepo) GetDefault(ctx context.Context) (*models.WarmupProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.IsDefault {
			return p, nil
		}
	}
	return nil, errors.ErrProfileNotFound
}

func (r *memProfileRepo) List(ctx context.Context) ([]*models.WarmupProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WarmupProfile
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (r *memProfileRepo) Update(ctx context.Context, profile *models.WarmupProfile) error {
	return r.Create(ctx, profile)
}

func (r *memProfileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return errors.ErrProfileNotFound
	}
	if p.IsSystem {
		return errors.ErrProfileProtected
	}
	delete(r.profiles, id)
	return nil
}

type memSettings struct {
	values map[string]string
}

func (s *memSettings) GetString(ctx context.Context, key, defaultValue string) string {
	if v, ok := s.values[key]; ok {
		return v
	}
	return defaultValue
}

func (s *memSettings) GetInt(ctx context.Context, key string, defaultValue int) int {
	if v, ok := s.values[key]; ok {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return defaultValue
}

func (s *memSettings) GetFloat(ctx context.Context, key string, defaultValue float64) float64 {
	if v, ok := s.values[key]; ok {
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func (s *memSettings) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	if v, ok := s.values[key]; ok {
		return v == "true"
	}
	return defaultValue
}

type stubSender struct {
	mu       sync.Mutex
	sent     []stubSend
	failFor  map[string]error
	testErr  error
	sequence int
}

type stubSend struct {
	From    string
	To      string
	Subject string
}

func (s *stubSender) Send(ctx context.Context, mailbox *models.Mailbox, to, subject, bodyHTML, bodyText string) (*interfaces.SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[mailbox.EmailAddress]; ok {
		return nil, err
	}
	s.sequence++
	s.sent = append(s.sent, stubSend{From: mailbox.EmailAddress, To: to, Subject: subject})
	return &interfaces.SendResult{MessageID: fmt.Sprintf("<msg-%d@test>", s.sequence)}, nil
}

func (s *stubSender) TestConnection(ctx context.Context, mailbox *models.Mailbox) error {
	return s.testErr
}

type stubContent struct{}

func (stubContent) GenerateWarmupContent(ctx context.Context, senderName, receiverName string) *interfaces.WarmupContent {
	return &interfaces.WarmupContent{
		Subject:  "Quick question for you",
		BodyHTML: fmt.Sprintf("<p>Hi %s, quick note from %s.</p>", receiverName, senderName),
		BodyText: fmt.Sprintf("Hi %s, quick note from %s.", receiverName, senderName),
	}
}

func (stubContent) GenerateReplyContent(ctx context.Context, originalSubject, originalBody, replierName string) *interfaces.WarmupContent {
	return &interfaces.WarmupContent{
		Subject:  "Re: " + originalSubject,
		BodyHTML: fmt.Sprintf("<p>Thanks! %s</p>", replierName),
		BodyText: fmt.Sprintf("Thanks! %s", replierName),
	}
}

type testEnv struct {
	service   *Service
	mailboxes *memMailboxRepo
	emails    *memWarmupEmailRepo
	alerts    *memAlertRepo
	dailyLogs *memDailyLogRepo
	profiles  *memProfileRepo
	settings  *memSettings
	sender    *stubSender
}

func newTestEnv(seed int64, mailboxes ...*models.Mailbox) *testEnv {
	env := &testEnv{
		mailboxes: newMemMailboxRepo(mailboxes...),
		emails:    &memWarmupEmailRepo{},
		alerts:    &memAlertRepo{},
		dailyLogs: &memDailyLogRepo{},
		profiles:  newMemProfileRepo(),
		settings:  &memSettings{values: map[string]string{}},
		sender:    &stubSender{failFor: map[string]error{}},
	}

	log := newTestLogger()
	repos := &repository.Repositories{
		MailboxRepository:        env.mailboxes,
		WarmupEmailRepository:    env.emails,
		WarmupProfileRepository:  env.profiles,
		WarmupAlertRepository:    env.alerts,
		WarmupDailyLogRepository: env.dailyLogs,
		Settings:                 env.settings,
	}
	env.service = NewService(
		log,
		repos,
		env.sender,
		stubContent{},
		events.NewNoopPublisher(log),
		"http://tracking.test",
		rand.New(rand.NewSource(seed)),
	)
	return env
}

func warmingMailbox(email string, limit int) *models.Mailbox {
	return &models.Mailbox{
		EmailAddress:     email,
		WarmupStatus:     enum.WarmupStatusWarmingUp,
		IsActive:         true,
		ConnectionStatus: enum.ConnectionStatusSuccessful,
		DailySendLimit:   limit,
		CreatedAt:        utils.Now().Add(-30 * 24 * time.Hour),
	}
}
