package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/pulsecoach/adjustment-engine/internal/adapters/cache"
	adapterHTTP "github.com/pulsecoach/adjustment-engine/internal/adapters/handler/http"
	"github.com/pulsecoach/adjustment-engine/internal/adapters/renderer"
	"github.com/pulsecoach/adjustment-engine/internal/adapters/repository"
	"github.com/pulsecoach/adjustment-engine/internal/core/domain"
	"github.com/pulsecoach/adjustment-engine/internal/core/engine"
	"github.com/pulsecoach/adjustment-engine/internal/core/services"
	"github.com/pulsecoach/adjustment-engine/internal/core/workers"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")

	serverPort := getEnv("PORT", "8080")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Critical: JWT_SECRET is required")
	}
	jwtIssuer := getEnv("JWT_ISSUER", "pulsecoach")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	log.Println("Connecting to database...")

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// The user repository maps constraint violations through lib/pq error
	// codes, so it runs on its own lib/pq connection.
	pqDB, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Critical: Failed to open user store connection: %v", err)
	}
	defer pqDB.Close()

	log.Println("Database connected successfully.")

	rdb, err := cache.NewRedisClient(cache.Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err != nil {
		log.Printf("Redis unavailable, running without cache and rate limiting: %v", err)
		rdb = nil
	}

	userRepo := repository.NewPostgresUserRepository(pqDB)
	checkInRepo := repository.NewPostgresCheckInRepository(db)
	decisionRepo := repository.NewPostgresDecisionRepository(db)

	var programRepo domain.ProgramRepository = repository.NewPostgresProgramRepository(db)
	if rdb != nil {
		programRepo = repository.NewCachedProgramRepository(programRepo, rdb)
	}

	var rationaleRenderer engine.Renderer
	if url := os.Getenv("RENDERER_URL"); url != "" {
		rationaleRenderer = renderer.NewHTTPRenderer(url, 3*time.Second)
		log.Printf("Using rationale renderer at %s", url)
	}
	eng := engine.New(rationaleRenderer, log.Printf)

	worker := workers.NewReviewWorker(programRepo, decisionRepo)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker.Start(workerCtx)

	authService := services.NewAuthService(userRepo)
	tokenService := services.NewTokenService(jwtSecret, jwtIssuer, 24*time.Hour, userRepo)
	programService := services.NewProgramService(programRepo)
	checkInService := services.NewCheckInService(checkInRepo, decisionRepo, programRepo, eng, worker)
	decisionService := services.NewDecisionService(decisionRepo, programRepo)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(authService, tokenService),
		ProgramHandler:  adapterHTTP.NewProgramHandler(programService),
		CheckInHandler:  adapterHTTP.NewCheckInHandler(checkInService),
		DecisionHandler: adapterHTTP.NewDecisionHandler(decisionService),
		TokenService:    tokenService,
		DB:              db,
		Redis:           rdb,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("PulseCoach adjustment engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
