package warmup

import (
	"context"
	"strings"

	"github.com/coldreach/warmstack/interfaces"
)

// Config is the full set of warmup tunables, resolved from the settings table
// with the stock defaults. Loaded once per job run so a cycle sees a
// consistent snapshot.
type Config struct {
	Phase1Days      int
	Phase1MinEmails int
	Phase1MaxEmails int
	Phase2Days      int
	Phase2MinEmails int
	Phase2MaxEmails int
	Phase3Days      int
	Phase3MinEmails int
	Phase3MaxEmails int
	Phase4Days      int
	Phase4MinEmails int
	Phase4MaxEmails int

	BounceRateGood   float64
	BounceRateBad    float64
	ReplyRateGood    float64
	ComplaintRateBad float64

	WeightBounceRate    int
	WeightReplyRate     int
	WeightComplaintRate int
	WeightAge           int
	AgeCapDays          int

	AutoPauseBounceRate    float64
	AutoPauseComplaintRate float64
	MinEmailsForScoring    int
	ActiveHealthThreshold  int
	ActiveMinDays          int
	TotalDays              int

	PeerEnabled      bool
	PeerMaxPerPair   int
	SkipWeekends     bool
	SendWindowStart  string
	SendWindowEnd    string

	AutoReplyEnabled bool
	ReplyRateTarget  float64
	ReplyMinDelayMin int
	ReplyMaxDelayMin int

	AutoRecoveryEnabled   bool
	RecoveryWaitDays      int
	RecoverySeedLimit     int
	RecoveryRampFactor    float64
	RecoveryRampCeiling   int
	RecoveryDoneThreshold int
	RecoveryMinDays       int

	AutoPauseOnBlacklist bool
	DKIMSelectors        []string
	BlacklistProviders   []string
}

var defaultDKIMSelectors = []string{"selector1", "selector2", "google", "default"}

var defaultBlacklistProviders = []string{
	"zen.spamhaus.org",
	"bl.spamcop.net",
	"b.barracudacentral.org",
	"dnsbl.sorbs.net",
	"cbl.abuseat.org",
	"dnsbl-1.uceprotect.net",
}

func LoadConfig(ctx context.Context, settings interfaces.SettingsStore) *Config {
	cfg := &Config{
		Phase1Days:      settings.GetInt(ctx, "warmup_phase_1_days", 7),
		Phase1MinEmails: settings.GetInt(ctx, "warmup_phase_1_min_emails", 2),
		Phase1MaxEmails: settings.GetInt(ctx, "warmup_phase_1_max_emails", 5),
		Phase2Days:      settings.GetInt(ctx, "warmup_phase_2_days", 7),
		Phase2MinEmails: settings.GetInt(ctx, "warmup_phase_2_min_emails", 5),
		Phase2MaxEmails: settings.GetInt(ctx, "warmup_phase_2_max_emails", 15),
		Phase3Days:      settings.GetInt(ctx, "warmup_phase_3_days", 7),
		Phase3MinEmails: settings.GetInt(ctx, "warmup_phase_3_min_emails", 15),
		Phase3MaxEmails: settings.GetInt(ctx, "warmup_phase_3_max_emails", 25),
		Phase4Days:      settings.GetInt(ctx, "warmup_phase_4_days", 9),
		Phase4MinEmails: settings.GetInt(ctx, "warmup_phase_4_min_emails", 25),
		Phase4MaxEmails: settings.GetInt(ctx, "warmup_phase_4_max_emails", 35),

		BounceRateGood:   settings.GetFloat(ctx, "warmup_bounce_rate_good", 2.0),
		BounceRateBad:    settings.GetFloat(ctx, "warmup_bounce_rate_bad", 5.0),
		ReplyRateGood:    settings.GetFloat(ctx, "warmup_reply_rate_good", 10.0),
		ComplaintRateBad: settings.GetFloat(ctx, "warmup_complaint_rate_bad", 0.1),

		WeightBounceRate:    settings.GetInt(ctx, "warmup_weight_bounce_rate", 35),
		WeightReplyRate:     settings.GetInt(ctx, "warmup_weight_reply_rate", 25),
		WeightComplaintRate: settings.GetInt(ctx, "warmup_weight_complaint_rate", 25),
		WeightAge:           settings.GetInt(ctx, "warmup_weight_age", 15),
		AgeCapDays:          settings.GetInt(ctx, "warmup_age_cap_days", 90),

		AutoPauseBounceRate:    settings.GetFloat(ctx, "warmup_auto_pause_bounce_rate", 5.0),
		AutoPauseComplaintRate: settings.GetFloat(ctx, "warmup_auto_pause_complaint_rate", 0.3),
		MinEmailsForScoring:    settings.GetInt(ctx, "warmup_min_emails_for_scoring", 10),
		ActiveHealthThreshold:  settings.GetInt(ctx, "warmup_active_health_threshold", 80),
		ActiveMinDays:          settings.GetInt(ctx, "warmup_active_min_days", 7),
		TotalDays:              settings.GetInt(ctx, "warmup_total_days", 30),

		PeerEnabled:     settings.GetBool(ctx, "warmup_peer_enabled", true),
		PeerMaxPerPair:  settings.GetInt(ctx, "warmup_peer_max_emails_per_pair", 3),
		SkipWeekends:    settings.GetBool(ctx, "warmup_skip_weekends", true),
		SendWindowStart: settings.GetString(ctx, "warmup_send_window_start", "09:00"),
		SendWindowEnd:   settings.GetString(ctx, "warmup_send_window_end", "17:00"),

		AutoReplyEnabled: settings.GetBool(ctx, "warmup_auto_reply_enabled", true),
		ReplyRateTarget:  settings.GetFloat(ctx, "warmup_auto_reply_rate", 0.5),
		ReplyMinDelayMin: settings.GetInt(ctx, "warmup_auto_reply_min_delay", 15),
		ReplyMaxDelayMin: settings.GetInt(ctx, "warmup_auto_reply_max_delay", 90),

		AutoRecoveryEnabled:   settings.GetBool(ctx, "warmup_auto_recovery_enabled", true),
		RecoveryWaitDays:      settings.GetInt(ctx, "warmup_recovery_wait_days", 3),
		RecoverySeedLimit:     settings.GetInt(ctx, "warmup_recovery_seed_limit", 2),
		RecoveryRampFactor:    settings.GetFloat(ctx, "warmup_recovery_ramp_factor", 1.5),
		RecoveryRampCeiling:   settings.GetInt(ctx, "warmup_recovery_ramp_ceiling", 35),
		RecoveryDoneThreshold: settings.GetInt(ctx, "warmup_recovery_done_threshold", 25),
		RecoveryMinDays:       settings.GetInt(ctx, "warmup_recovery_min_days", 7),

		AutoPauseOnBlacklist: settings.GetBool(ctx, "warmup_auto_pause_on_blacklist", true),
		DKIMSelectors:        splitList(settings.GetString(ctx, "warmup_dkim_selectors", ""), defaultDKIMSelectors),
		BlacklistProviders:   splitList(settings.GetString(ctx, "warmup_blacklist_providers", ""), defaultBlacklistProviders),
	}
	return cfg
}

func splitList(value string, defaults []string) []string {
	if strings.TrimSpace(value) == "" {
		return defaults
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}

// PhaseDays returns the configured day count for a phase.
func (c *Config) PhaseDays(phase int) int {
	switch phase {
	case 1:
		return c.Phase1Days
	case 2:
		return c.Phase2Days
	case 3:
		return c.Phase3Days
	default:
		return c.Phase4Days
	}
}

// PhaseRange returns the configured min/max daily emails for a phase.
func (c *Config) PhaseRange(phase int) (int, int) {
	switch phase {
	case 1:
		return c.Phase1MinEmails, c.Phase1MaxEmails
	case 2:
		return c.Phase2MinEmails, c.Phase2MaxEmails
	case 3:
		return c.Phase3MinEmails, c.Phase3MaxEmails
	default:
		return c.Phase4MinEmails, c.Phase4MaxEmails
	}
}
