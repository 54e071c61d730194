package dnscheck

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/dnsclient"
	"github.com/coldreach/warmstack/internal/enum"
	"github.com/coldreach/warmstack/internal/logger"
	"github.com/coldreach/warmstack/internal/models"
	"github.com/coldreach/warmstack/internal/repository"
	"github.com/coldreach/warmstack/services/events"
)

type fakeResolver struct {
	txt map[string][]string
	mx  map[string][]dnsclient.MX
	err error
}

func (r *fakeResolver) LookupTXT(ctx context.Context, name string) ([]string, error) {
	return r.txt[name], r.err
}

// LookupMX returns records in priority order, matching the real resolver.
func (r *fakeResolver) LookupMX(ctx context.Context, name string) ([]dnsclient.MX, error) {
	records := append([]dnsclient.MX(nil), r.mx[name]...)
	sort.Slice(records, func(i, j int) bool { return records[i].Priority < records[j].Priority })
	return records, r.err
}

func (r *fakeResolver) LookupA(ctx context.Context, name string) ([]string, error) {
	return nil, r.err
}

type fakeMailboxRepo struct {
	interfaces.MailboxRepository
	mailboxes map[string]*models.Mailbox
}

func (r *fakeMailboxRepo) GetMailbox(ctx context.Context, id string) (*models.Mailbox, error) {
	mb, ok := r.mailboxes[id]
	if !ok {
		return nil, fmt.Errorf("mailbox %s not found", id)
	}
	return mb, nil
}

func (r *fakeMailboxRepo) SaveMailbox(ctx context.Context, mailbox *models.Mailbox) error {
	r.mailboxes[mailbox.ID] = mailbox
	return nil
}

func (r *fakeMailboxRepo) GetMailboxesByStatus(ctx context.Context, statuses ...enum.WarmupStatus) ([]*models.Mailbox, error) {
	var out []*models.Mailbox
	for _, mb := range r.mailboxes {
		for _, status := range statuses {
			if mb.WarmupStatus == status {
				out = append(out, mb)
				break
			}
		}
	}
	return out, nil
}

type fakeCheckRepo struct {
	results []*models.DNSCheckResult
}

func (r *fakeCheckRepo) Create(ctx context.Context, result *models.DNSCheckResult) error {
	r.results = append(r.results, result)
	return nil
}

func (r *fakeCheckRepo) GetLatest(ctx context.Context, mailboxID string) (*models.DNSCheckResult, error) {
	for i := len(r.results) - 1; i >= 0; i-- {
		if r.results[i].MailboxID == mailboxID {
			return r.results[i], nil
		}
	}
	return nil, nil
}

type fakeAlertRepo struct {
	interfaces.WarmupAlertRepository
	alerts []*models.WarmupAlert
}

func (r *fakeAlertRepo) Create(ctx context.Context, alert *models.WarmupAlert) error {
	r.alerts = append(r.alerts, alert)
	return nil
}

type mapSettings map[string]string

func (s mapSettings) GetString(ctx context.Context, key, defaultValue string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return defaultValue
}

func (s mapSettings) GetInt(ctx context.Context, key string, defaultValue int) int {
	return defaultValue
}

func (s mapSettings) GetFloat(ctx context.Context, key string, defaultValue float64) float64 {
	return defaultValue
}

func (s mapSettings) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	return defaultValue
}

func testLogger() logger.Logger {
	l := logger.NewAppLogger(&logger.Config{DevMode: true, Encoder: "console", LogLevel: "error"})
	l.InitLogger()
	return l
}

type checkEnv struct {
	service   interfaces.DNSCheckService
	mailboxes *fakeMailboxRepo
	checks    *fakeCheckRepo
	alerts    *fakeAlertRepo
	settings  mapSettings
}

func newCheckEnv(resolver dnsclient.Resolver, mailboxes ...*models.Mailbox) *checkEnv {
	env := &checkEnv{
		mailboxes: &fakeMailboxRepo{mailboxes: map[string]*models.Mailbox{}},
		checks:    &fakeCheckRepo{},
		alerts:    &fakeAlertRepo{},
		settings:  mapSettings{},
	}
	for _, mb := range mailboxes {
		env.mailboxes.mailboxes[mb.ID] = mb
	}
	log := testLogger()
	repos := &repository.Repositories{
		MailboxRepository:        env.mailboxes,
		DNSCheckRepository:       env.checks,
		WarmupAlertRepository:    env.alerts,
		Settings:                 env.settings,
	}
	env.service = NewDNSCheckService(log, repos, resolver, events.NewNoopPublisher(log))
	return env
}

func fullyConfiguredResolver(domain string) *fakeResolver {
	return &fakeResolver{
		txt: map[string][]string{
			domain: {"v=spf1 include:_spf.google.com ~all"},
			"google._domainkey." + domain: {"v=DKIM1; k=rsa; p=MIGfMA0"},
			"_dmarc." + domain:            {"v=DMARC1; p=reject; rua=mailto:dmarc@" + domain},
		},
		mx: map[string][]dnsclient.MX{
			domain: {
				{Host: "alt1.aspmx.l.google.com", Priority: 5},
				{Host: "aspmx.l.google.com", Priority: 1},
			},
		},
	}
}

func TestRunCheckFullyConfiguredDomain(t *testing.T) {
	mb := &models.Mailbox{ID: "mbox_1", EmailAddress: "sales@warm.test", WarmupStatus: enum.WarmupStatusWarmingUp}
	env := newCheckEnv(fullyConfiguredResolver("warm.test"), mb)

	result, err := env.service.RunCheck(context.Background(), "mbox_1")
	require.NoError(t, err)

	assert.True(t, result.SPFValid)
	assert.Equal(t, "v=spf1 include:_spf.google.com ~all", result.SPFRecord)
	assert.True(t, result.DKIMValid)
	assert.Equal(t, "google", result.DKIMSelector)
	assert.True(t, result.DMARCValid)
	assert.Equal(t, "reject", result.DMARCPolicy)
	assert.Equal(t, 100, result.OverallScore)
	assert.Equal(t, []string{"aspmx.l.google.com", "alt1.aspmx.l.google.com"}, []string(result.MXHosts))

	assert.Equal(t, 100, mb.DNSScore)
	assert.NotNil(t, mb.LastDNSCheckAt)
	assert.Empty(t, env.alerts.alerts, "healthy domain raises no alert")
}

func TestRunCheckScoresPartialSetup(t *testing.T) {
	resolver := &fakeResolver{
		txt: map[string][]string{
			"warm.test": {"v=spf1 -all"},
		},
	}
	mb := &models.Mailbox{ID: "mbox_1", EmailAddress: "sales@warm.test"}
	env := newCheckEnv(resolver, mb)

	result, err := env.service.RunCheck(context.Background(), "mbox_1")
	require.NoError(t, err)

	assert.True(t, result.SPFValid)
	assert.False(t, result.DKIMValid)
	assert.False(t, result.DMARCValid)
	assert.Equal(t, 35, result.OverallScore)

	require.Len(t, env.alerts.alerts, 1)
	assert.Equal(t, enum.AlertTypeDNSIssue, env.alerts.alerts[0].AlertType)
	assert.Equal(t, enum.AlertSeverityWarning, env.alerts.alerts[0].Severity)
	assert.Contains(t, env.alerts.alerts[0].Message, "DKIM")
	assert.Contains(t, env.alerts.alerts[0].Message, "DMARC")
}

func TestRunCheckDMARCPolicyExtraction(t *testing.T) {
	for policy, record := range map[string]string{
		"reject":     "v=DMARC1; p=reject",
		"quarantine": "v=DMARC1; p=quarantine; pct=50",
		"none":       "v=DMARC1; p=none",
	} {
		resolver := &fakeResolver{txt: map[string][]string{"_dmarc.warm.test": {record}}}
		mb := &models.Mailbox{ID: "mbox_1", EmailAddress: "a@warm.test"}
		env := newCheckEnv(resolver, mb)

		result, err := env.service.RunCheck(context.Background(), "mbox_1")
		require.NoError(t, err)
		assert.Equal(t, policy, result.DMARCPolicy, record)
	}
}

func TestRunCheckDKIMSelectorOrder(t *testing.T) {
	resolver := &fakeResolver{
		txt: map[string][]string{
			"selector2._domainkey.warm.test": {"v=DKIM1; p=abc"},
			"default._domainkey.warm.test":   {"v=DKIM1; p=def"},
		},
	}
	mb := &models.Mailbox{ID: "mbox_1", EmailAddress: "a@warm.test"}
	env := newCheckEnv(resolver, mb)

	result, err := env.service.RunCheck(context.Background(), "mbox_1")
	require.NoError(t, err)
	assert.Equal(t, "selector2", result.DKIMSelector, "first configured selector with a key wins")
}

func TestRunAllChecksSweepsSendingStatuses(t *testing.T) {
	resolver := fullyConfiguredResolver("warm.test")
	active := &models.Mailbox{ID: "mbox_1", EmailAddress: "a@warm.test", WarmupStatus: enum.WarmupStatusActive}
	warming := &models.Mailbox{ID: "mbox_2", EmailAddress: "b@warm.test", WarmupStatus: enum.WarmupStatusWarmingUp}
	inactive := &models.Mailbox{ID: "mbox_3", EmailAddress: "c@warm.test", WarmupStatus: enum.WarmupStatusInactive}
	env := newCheckEnv(resolver, active, warming, inactive)

	processed, errored := env.service.RunAllChecks(context.Background())

	assert.Equal(t, 2, processed)
	assert.Zero(t, errored)
	assert.Len(t, env.checks.results, 2)
}

func TestCalculateScore(t *testing.T) {
	assert.Equal(t, 0, calculateScore(false, false, false))
	assert.Equal(t, 35, calculateScore(true, false, false))
	assert.Equal(t, 70, calculateScore(true, true, false))
	assert.Equal(t, 100, calculateScore(true, true, true))
	assert.Equal(t, 65, calculateScore(true, false, true))
}
