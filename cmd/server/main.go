// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/koren13n/dice-be/internal/database"
	"github.com/koren13n/dice-be/internal/handlers"
	"github.com/koren13n/dice-be/internal/history"
	"github.com/koren13n/dice-be/internal/middleware"
	"github.com/koren13n/dice-be/internal/playground"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := database.ConnectDB(logger); err != nil {
		log.Fatalf("database: %v", err)
	}

	rec, err := history.Connect(context.Background(), logger)
	if err != nil {
		log.Fatalf("history queue: %v", err)
	}
	if rec == nil {
		logger.Info("REDIS_ADDR unset, round history disabled")
	}

	pg := playground.New(logger, rec)
	pg.StartJanitor(context.Background(),
		getEnvDuration("JANITOR_INTERVAL", time.Minute),
		getEnvDuration("ROOM_TTL", 30*time.Minute),
	)

	mux := http.NewServeMux()
	mux.Handle("/users/", middleware.LogMiddleware(logger)(handlers.UsersHandler(logger)))
	mux.Handle("/games/", middleware.LogMiddleware(logger)(handlers.GamesHandler(logger, pg)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
