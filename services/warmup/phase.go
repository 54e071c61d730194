package warmup

import (
	"math"

	"github.com/coldreach/warmstack/internal/models"
)

var phaseNames = map[int]string{
	1: "Initial",
	2: "Building Trust",
	3: "Scaling Up",
	4: "Full Ramp",
}

// PhaseForDay maps a 1-based warmup day to its phase number and name.
func PhaseForDay(day int, cfg *Config) (int, string) {
	p1End := cfg.Phase1Days
	p2End := p1End + cfg.Phase2Days
	p3End := p2End + cfg.Phase3Days

	switch {
	case day <= p1End:
		return 1, phaseNames[1]
	case day <= p2End:
		return 2, phaseNames[2]
	case day <= p3End:
		return 3, phaseNames[3]
	default:
		return 4, phaseNames[4]
	}
}

// DailyLimitForDay interpolates linearly inside the phase's min/max range, so
// the ramp is deterministic for a given day and config.
func DailyLimitForDay(day int, cfg *Config) int {
	phase, _ := PhaseForDay(day, cfg)

	phaseDays := cfg.PhaseDays(phase)
	minEmails, maxEmails := cfg.PhaseRange(phase)

	phaseStart := 0
	for p := 1; p < phase; p++ {
		phaseStart += cfg.PhaseDays(p)
	}

	dayInPhase := day - phaseStart
	if phaseDays <= 1 {
		return maxEmails
	}

	progress := float64(dayInPhase-1) / float64(phaseDays-1)
	limit := float64(minEmails) + progress*float64(maxEmails-minEmails)
	rounded := int(math.Round(limit))
	if rounded < 1 {
		return 1
	}
	return rounded
}

// ApplyProfile copies the profile's phase parameters onto the config. Profile
// edits never retroactively change a mailbox unless reapplied.
func (c *Config) ApplyProfile(profile *models.WarmupProfile) {
	if profile == nil {
		return
	}
	c.Phase1Days, c.Phase1MinEmails, c.Phase1MaxEmails = profile.Phase1Days, profile.Phase1MinEmails, profile.Phase1MaxEmails
	c.Phase2Days, c.Phase2MinEmails, c.Phase2MaxEmails = profile.Phase2Days, profile.Phase2MinEmails, profile.Phase2MaxEmails
	c.Phase3Days, c.Phase3MinEmails, c.Phase3MaxEmails = profile.Phase3Days, profile.Phase3MinEmails, profile.Phase3MaxEmails
	c.Phase4Days, c.Phase4MinEmails, c.Phase4MaxEmails = profile.Phase4Days, profile.Phase4MinEmails, profile.Phase4MaxEmails
	c.TotalDays = profile.TotalDays()
}

type SchedulePhase struct {
	Phase     int    `json:"phase"`
	Name      string `json:"name"`
	StartDay  int    `json:"startDay"`
	EndDay    int    `json:"endDay"`
	Days      int    `json:"days"`
	MinEmails int    `json:"minEmails"`
	MaxEmails int    `json:"maxEmails"`
}

type ScheduleDay struct {
	Day               int    `json:"day"`
	Phase             int    `json:"phase"`
	PhaseName         string `json:"phaseName"`
	RecommendedEmails int    `json:"recommendedEmails"`
}

type Schedule struct {
	TotalDays int             `json:"totalDays"`
	Phases    []SchedulePhase `json:"phases"`
	Days      []ScheduleDay   `json:"days"`
}

// BuildSchedule produces the day-by-day ramp preview for a config.
func BuildSchedule(cfg *Config) *Schedule {
	schedule := &Schedule{TotalDays: cfg.TotalDays}

	dayOffset := 0
	for p := 1; p <= 4; p++ {
		pDays := cfg.PhaseDays(p)
		minEmails, maxEmails := cfg.PhaseRange(p)
		schedule.Phases = append(schedule.Phases, SchedulePhase{
			Phase:     p,
			Name:      phaseNames[p],
			StartDay:  dayOffset + 1,
			EndDay:    dayOffset + pDays,
			Days:      pDays,
			MinEmails: minEmails,
			MaxEmails: maxEmails,
		})
		dayOffset += pDays
	}

	for day := 1; day <= cfg.TotalDays; day++ {
		phase, name := PhaseForDay(day, cfg)
		schedule.Days = append(schedule.Days, ScheduleDay{
			Day:               day,
			Phase:             phase,
			PhaseName:         name,
			RecommendedEmails: DailyLimitForDay(day, cfg),
		})
	}

	return schedule
}
