package cron

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/coldreach/warmstack/internal/config"
	cron_config "github.com/coldreach/warmstack/internal/cron/config"
	"github.com/coldreach/warmstack/internal/logger"
	"github.com/coldreach/warmstack/internal/tracing"
	"github.com/coldreach/warmstack/services"
)

// CONSTANTS
const (
	// GroupWarmup is the group for warmup lifecycle jobs
	GroupWarmup = "warmup"
	// GroupChecks is the group for DNS and blacklist monitoring jobs
	GroupChecks = "checks"
)

// LOCK MANAGEMENT
var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupWarmup: new(sync.Mutex),
		GroupChecks: new(sync.Mutex),
	},
}

type CronManager struct {
	cfg      *config.Config
	log      logger.Logger
	cron     *cronv3.Cron
	stopCh   chan struct{}
	jobIDs   map[string]cronv3.EntryID
	services *services.Services
}

// JobStatus describes one registered job for the scheduler status endpoint.
type JobStatus struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"nextRun"`
	PrevRun time.Time `json:"prevRun"`
	Running bool      `json:"running"`
	EntryID int       `json:"entryId"`
}

func NewCronManager(cfg *config.Config, log logger.Logger, svcs *services.Services) *CronManager {
	return &CronManager{
		cfg:      cfg,
		log:      log,
		stopCh:   make(chan struct{}),
		jobIDs:   make(map[string]cronv3.EntryID),
		services: svcs,
	}
}

// Start initializes and starts the cron manager. A single instance owns the
// schedule; there is no leader election.
func (cm *CronManager) Start() error {
	cm.StartCron()
	return nil
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// StartCron initializes and starts the cron scheduler
func (cm *CronManager) StartCron() {
	cm.log.Info("Starting cron manager")
	// Create a new cron with seconds field enabled and panic recovery
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

// Status reports every registered job with its next and previous run times,
// sorted by name.
func (cm *CronManager) Status() []JobStatus {
	if cm.cron == nil {
		return nil
	}
	statuses := make([]JobStatus, 0, len(cm.jobIDs))
	for name, id := range cm.jobIDs {
		entry := cm.cron.Entry(id)
		if !entry.Valid() {
			continue
		}
		statuses = append(statuses, JobStatus{
			Name:    name,
			NextRun: entry.Next,
			PrevRun: entry.Prev,
			Running: true,
			EntryID: int(entry.ID),
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	// Load cron config from environment variables
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	// Register heartbeat job
	if cronConfig.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		cm.addJob(c, "heartbeat", cronConfig.CronScheduleHeartbeat, "", func() {
			cm.log.Infof("Cron heartbeat from pod: %s", podName)
		})
	}

	if cronConfig.CronScheduleDailyAssessment != "" {
		cm.addJob(c, "daily_assessment", cronConfig.CronScheduleDailyAssessment, GroupWarmup, cm.runDailyAssessment)
	}
	if cronConfig.CronSchedulePeerWarmup != "" {
		cm.addJob(c, "peer_warmup", cronConfig.CronSchedulePeerWarmup, GroupWarmup, cm.runPeerWarmup)
	}
	if cronConfig.CronScheduleAutoReply != "" {
		cm.addJob(c, "auto_reply", cronConfig.CronScheduleAutoReply, GroupWarmup, cm.runAutoReply)
	}
	if cronConfig.CronScheduleQuotaReset != "" {
		cm.addJob(c, "quota_reset", cronConfig.CronScheduleQuotaReset, GroupWarmup, cm.runQuotaReset)
	}
	if cronConfig.CronScheduleRecoveryCheck != "" {
		cm.addJob(c, "recovery_check", cronConfig.CronScheduleRecoveryCheck, GroupWarmup, cm.runRecoveryCheck)
	}
	if cronConfig.CronScheduleDailySnapshot != "" {
		cm.addJob(c, "daily_snapshot", cronConfig.CronScheduleDailySnapshot, GroupWarmup, cm.runDailySnapshot)
	}
	if cronConfig.CronScheduleDNSChecks != "" {
		cm.addJob(c, "dns_checks", cronConfig.CronScheduleDNSChecks, GroupChecks, cm.runDNSChecks)
	}
	if cronConfig.CronScheduleBlacklistChecks != "" {
		cm.addJob(c, "blacklist_checks", cronConfig.CronScheduleBlacklistChecks, GroupChecks, cm.runBlacklistChecks)
	}
}

// addJob registers a single job. Jobs in the same group never run
// concurrently with each other.
func (cm *CronManager) addJob(c *cronv3.Cron, name, schedule, group string, run func()) {
	id, err := c.AddFunc(schedule, func() {
		defer tracing.RecoverAndLogToJaeger(cm.log)
		if group != "" {
			jobLocks.locks[group].Lock()
			defer jobLocks.locks[group].Unlock()
		}
		run()
	})
	if err != nil {
		cm.log.Fatalf("Could not add %s cron job: %v", name, err)
	}
	cm.jobIDs[name] = id
	cm.log.Infof("Registered %s job with schedule: %s", name, schedule)
}

func (cm *CronManager) runDailyAssessment() {
	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runDailyAssessment")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	summary, err := cm.services.WarmupService.RunAssessment(ctx, "")
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Daily assessment failed: %v", err)
		return
	}
	cm.log.Infof("Daily assessment: %d assessed, %d status changes, %d auto-paused, %d errors",
		summary.Assessed, summary.StatusChanges, summary.AutoPaused, summary.Errors)
}

func (cm *CronManager) runPeerWarmup() {
	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runPeerWarmup")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	result, err := cm.services.WarmupService.RunPeerCycle(ctx, "")
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Peer warmup cycle failed: %v", err)
		return
	}
	if result.Skipped {
		cm.log.Infof("Peer warmup cycle skipped: %s", result.SkipReason)
		return
	}
	cm.log.Infof("Peer warmup cycle: %d sent, %d failed", result.Sent, result.Failed)
}

func (cm *CronManager) runAutoReply() {
	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runAutoReply")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	result, err := cm.services.WarmupService.RunAutoReplyCycle(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Auto-reply cycle failed: %v", err)
		return
	}
	if result.Skipped {
		cm.log.Infof("Auto-reply cycle skipped: %s", result.SkipReason)
		return
	}
	cm.log.Infof("Auto-reply cycle: %d replied, %d failed, %d skipped", result.Replied, result.Failed, result.SkippedEmails)
}

func (cm *CronManager) runQuotaReset() {
	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runQuotaReset")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	reset, err := cm.services.WarmupService.ResetDailyQuotas(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Quota reset failed: %v", err)
		return
	}
	cm.log.Infof("Quota reset: %d mailboxes reset", reset)
}

func (cm *CronManager) runRecoveryCheck() {
	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runRecoveryCheck")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	result, err := cm.services.WarmupService.RunRecoveryCheck(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Recovery check failed: %v", err)
		return
	}
	cm.log.Infof("Recovery check: %d started, %d advanced, %d completed", result.AutoStarted, result.RecoveringAdvanced, result.Completed)
}

func (cm *CronManager) runDailySnapshot() {
	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runDailySnapshot")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	result, err := cm.services.WarmupService.RunDailySnapshot(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		cm.log.Errorf("Daily snapshot failed: %v", err)
		return
	}
	cm.log.Infof("Daily snapshot: %d written, %d skipped", result.Written, result.Skipped)
}

func (cm *CronManager) runDNSChecks() {
	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runDNSChecks")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	processed, errored := cm.services.DNSCheckService.RunAllChecks(ctx)
	cm.log.Infof("DNS checks: %d processed, %d errored", processed, errored)
}

func (cm *CronManager) runBlacklistChecks() {
	ctx := context.Background()
	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runBlacklistChecks")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	processed, errored := cm.services.BlacklistService.RunAllChecks(ctx)
	cm.log.Infof("Blacklist checks: %d processed, %d errored", processed, errored)
}
