package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/seatsync/library-backend-go/internal/config"
	appHTTP "github.com/seatsync/library-backend-go/internal/handler/http"
	"github.com/seatsync/library-backend-go/internal/pkg/cron"
	"github.com/seatsync/library-backend-go/internal/pkg/database"
	"github.com/seatsync/library-backend-go/internal/pkg/jwt"
	"github.com/seatsync/library-backend-go/internal/pkg/sse"
	"github.com/seatsync/library-backend-go/internal/repository/postgresql"
	analyticsService "github.com/seatsync/library-backend-go/internal/service/analytics"
	"github.com/seatsync/library-backend-go/internal/service/scan"
	sessionService "github.com/seatsync/library-backend-go/internal/service/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	sessionRepo := postgresql.NewSessionRepository(db)
	branchRepo := postgresql.NewBranchRepository(db)
	subjectRepo := postgresql.NewSubjectRepository(db)
	planRepo := postgresql.NewPlanRepository(db)
	analyticsRepo := postgresql.NewAnalyticsRepository(db)
	txManager := postgresql.NewTxManager(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()
	resolver := scan.NewResolver(branchRepo, subjectRepo)

	sessionSvc := sessionService.NewSessionService(
		sessionRepo,
		branchRepo,
		subjectRepo,
		planRepo,
		txManager,
		resolver,
		hub,
	)
	analyticsSvc := analyticsService.NewAnalyticsService(analyticsRepo, branchRepo, cfg.Attendance.TrendDays)

	attendanceHandler := appHTTP.NewAttendanceHandler(sessionSvc, JWTService, hub)
	analyticsHandler := appHTTP.NewAnalyticsHandler(analyticsSvc)
	branchHandler := appHTTP.NewBranchHandler(branchRepo)

	scheduler := cron.NewScheduler()
	sessionJobs := cron.NewSessionJobs(
		sessionRepo,
		hub,
		time.Duration(cfg.Attendance.StaleSessionMaxHours)*time.Hour,
	)
	sessionJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		cfg,
		JWTService,
		attendanceHandler,
		analyticsHandler,
		branchHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
