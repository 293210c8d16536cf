package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ideaforge-io/ideaforge/src/ai"
	"github.com/ideaforge-io/ideaforge/src/api/config"
	"github.com/ideaforge-io/ideaforge/src/api/data"
	"github.com/ideaforge-io/ideaforge/src/api/events"
	"github.com/ideaforge-io/ideaforge/src/api/store"
	"github.com/ideaforge-io/ideaforge/src/api/types"
	"github.com/ideaforge-io/ideaforge/src/api/webserver"
	"gorm.io/gorm"
)

var allModels = []interface{}{
	&types.User{}, &types.Proposal{},
	&types.Investment{}, &types.Like{}, &types.Comment{},
}

func migrate(db *gorm.DB) {
	if err := db.AutoMigrate(allModels...); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	migrate(db)

	rdb := data.MustRedis(cfg.RedisURL)

	st := store.NewGorm(db)
	pub := events.NewRedis(rdb)
	relay := ai.NewClient(cfg.GeminiKey)

	router := webserver.New(cfg, st, pub, relay)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("IdeaForge API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
