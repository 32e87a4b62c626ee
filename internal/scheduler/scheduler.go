// Package scheduler wires the recurring jobs: data ingestion, the daily
// analysis run and signal settlement.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/mister-predictor/internal/service"
)

// Scheduler manages the recurring pipeline jobs
type Scheduler struct {
	cron          *cron.Cron
	ingestionSvc  *service.IngestionService
	pipelineSvc   *service.SignalPipelineService
	settlementSvc *service.SettlementService
	logger        *logrus.Logger
	mu            sync.RWMutex
	isRunning     bool
	jobIDs        []cron.EntryID
}

// NewScheduler creates a new scheduler running in UTC
func NewScheduler(
	ingestionSvc *service.IngestionService,
	pipelineSvc *service.SignalPipelineService,
	settlementSvc *service.SettlementService,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(time.UTC)),
		ingestionSvc:  ingestionSvc,
		pipelineSvc:   pipelineSvc,
		settlementSvc: settlementSvc,
		logger:        logger,
		jobIDs:        make([]cron.EntryID, 0),
	}
}

// ScheduleDailyAnalysis schedules the full daily cycle: sync everything,
// settle finished matches, then analyze upcoming ones. Ordering matters; a
// signal must never be generated from stale results.
func (s *Scheduler) ScheduleDailyAnalysis(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Hour)
		defer cancel()

		s.logger.Info("Starting daily analysis cycle")

		if err := s.ingestionSvc.SyncAll(ctx); err != nil {
			s.logger.WithError(err).Error("Daily sync failed, continuing with stored data")
		}
		if _, err := s.settlementSvc.SettleAll(ctx); err != nil {
			s.logger.WithError(err).Error("Settlement failed")
		}
		if _, err := s.pipelineSvc.RunAnalysis(ctx); err != nil {
			s.logger.WithError(err).Error("Analysis run failed")
			return
		}

		s.logger.Info("Daily analysis cycle complete")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled daily analysis job")
	return nil
}

// ScheduleOddsPolling schedules periodic odds snapshots so the market
// confidence engine has drift history to work with
func (s *Scheduler) ScheduleOddsPolling(intervalMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	if intervalMinutes < 5 {
		intervalMinutes = 5
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(intervalMinutes-1)*time.Minute)
		defer cancel()

		if err := s.ingestionSvc.SyncOdds(ctx); err != nil {
			s.logger.WithError(err).Error("Odds polling failed")
		}
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %dm", intervalMinutes), jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("interval_mins", intervalMinutes).Info("Scheduled odds polling job")
	return nil
}

// ScheduleSettlement schedules an independent settlement sweep between daily
// cycles so results resolve soon after final whistles
func (s *Scheduler) ScheduleSettlement(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
		defer cancel()

		if err := s.ingestionSvc.SyncMatches(ctx); err != nil {
			s.logger.WithError(err).Error("Result sync failed before settlement")
		}
		if _, err := s.settlementSvc.SettleAll(ctx); err != nil {
			s.logger.WithError(err).Error("Settlement sweep failed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled settlement job")
	return nil
}

// SignalPublisher delivers freshly generated signals to subscribers
type SignalPublisher interface {
	PublishNewSignals(ctx context.Context) error
}

// SchedulePublisher schedules periodic delivery of unpublished signals
func (s *Scheduler) SchedulePublisher(publisher SignalPublisher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := publisher.PublishNewSignals(ctx); err != nil {
			s.logger.WithError(err).Error("Signal publishing failed")
		}
	}

	entryID, err := s.cron.AddFunc("@every 10m", jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.Info("Scheduled signal publisher job")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning reports whether the scheduler has been started
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
