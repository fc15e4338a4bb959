package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/arsouza/fintrack/internal/auth"
	"github.com/arsouza/fintrack/internal/config"
	"github.com/arsouza/fintrack/internal/database"
	"github.com/arsouza/fintrack/internal/handler"
	"github.com/arsouza/fintrack/internal/queue"
	"github.com/arsouza/fintrack/internal/repository"
	"github.com/arsouza/fintrack/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), time.Duration(cfg.TokenTTLDays)*24*time.Hour)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	// nil client disables rate limiting and caching
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	txns := repository.NewTransactionRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	txnHandler := handler.NewTransactionHandler(users, txns)

	// Audit consumer runs its own reconnect loop for the life of the process.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, tokens, rdb)
	router.RegisterAPI(e, authHandler, txnHandler, tokens, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
