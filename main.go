package main

import (
	"github.com/studyhall/studyhall/config"
	"github.com/studyhall/studyhall/gamification"
	"github.com/studyhall/studyhall/jobs"
	"github.com/studyhall/studyhall/models"
	"github.com/studyhall/studyhall/routes"
	"github.com/studyhall/studyhall/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Course{}, &models.Lesson{}, &models.Enrollment{}, &models.LessonProgress{},
		&models.Quiz{}, &models.QuizQuestion{}, &models.QuizAttempt{},
		&models.Assignment{}, &models.Submission{},
		&models.UserGamification{}, &models.UserStreak{}, &models.Badge{}, &models.UserBadge{},
		&models.StudyKit{}, &models.KitOrder{},
		&models.CalendarEvent{},
		&models.FinanceEntry{},
	)

	if err := models.SeedDefaultBadges(db); err != nil {
		utils.Sugar.Fatalf("badge seed failed: %v", err)
	}

	ledger := gamification.NewLedger(db, utils.Sugar)

	scheduler, err := jobs.NewScheduler(db, utils.Sugar)
	if err != nil {
		utils.Sugar.Fatalf("scheduler init failed: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	r := routes.SetupRouter(db, ledger)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
