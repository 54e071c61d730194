package warmup

import (
	"strconv"
	"strings"
	"time"
)

// IsSendWindowOpen reports whether peer warmup traffic may flow at the given
// moment: inside the configured business-hours window and, when weekend skip
// is on, not on Saturday or Sunday. The window is fixed to the scheduler's
// clock, not mailbox-local time.
func IsSendWindowOpen(now time.Time, cfg *Config) bool {
	if cfg.SkipWeekends {
		wd := now.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return false
		}
	}

	startH, startM, ok := parseClock(cfg.SendWindowStart)
	if !ok {
		startH, startM = 9, 0
	}
	endH, endM, ok := parseClock(cfg.SendWindowEnd)
	if !ok {
		endH, endM = 17, 0
	}

	minutes := now.Hour()*60 + now.Minute()
	return minutes >= startH*60+startM && minutes < endH*60+endM
}

func parseClock(value string) (int, int, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
