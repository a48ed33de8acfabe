package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/studyhall/studyhall/config"
	"github.com/studyhall/studyhall/controllers"
	"github.com/studyhall/studyhall/utils"
)

// Scheduler owns the background cron jobs.
type Scheduler struct {
	cron *cron.Cron
	db   *gorm.DB
	log  *zap.SugaredLogger
}

// NewScheduler creates a Scheduler with all jobs registered but not started.
func NewScheduler(db *gorm.DB, log *zap.SugaredLogger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(),
		db:   db,
		log:  log,
	}

	// Rebuild the leaderboard cache shortly after midnight so the first
	// morning request does not pay for the scan.
	if _, err := s.cron.AddFunc("10 0 * * *", s.rebuildLeaderboard); err != nil {
		return nil, err
	}
	// Refresh the finance summary on the first of each month.
	if _, err := s.cron.AddFunc("30 0 1 * *", s.rollupFinance); err != nil {
		return nil, err
	}

	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) rebuildLeaderboard() {
	entries, err := controllers.BuildLeaderboard(s.db, config.Get().LeaderboardSize)
	if err != nil {
		s.log.Errorf("leaderboard rebuild: %v", err)
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: map[string]interface{}{"items": entries}}
	utils.CacheSetJSON(controllers.LeaderboardCacheKey, wrapper, 25*time.Hour)
	s.log.Infof("leaderboard rebuilt with %d entries", len(entries))
}

func (s *Scheduler) rollupFinance() {
	summaries, err := controllers.LoadFinanceSummary(s.db)
	if err != nil {
		s.log.Errorf("finance rollup: %v", err)
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: map[string]interface{}{"items": summaries}}
	utils.CacheSetJSON(controllers.FinanceSummaryCacheKey, wrapper, 32*24*time.Hour)
	s.log.Infof("finance summary rolled up for %d months", len(summaries))
}
