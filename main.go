package main

import (
	"flag"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"hive/internal/integration"
	"hive/internal/server"
	"hive/internal/store"
)

type config struct {
	Port       int    `env:"HIVE_PORT" envDefault:"8080"`
	DBPath     string `env:"HIVE_DB" envDefault:"hive.db"`
	MaxMatches int    `env:"HIVE_MAX_MATCHES" envDefault:"32"`
	FastTimers bool   `env:"HIVE_FAST_TIMERS" envDefault:"false"`
}

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config error: %v", err)
	}

	flag.IntVar(&cfg.Port, "port", cfg.Port, "server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite database path, empty disables persistence")
	flag.IntVar(&cfg.MaxMatches, "max-matches", cfg.MaxMatches, "concurrent match cap")
	flag.BoolVar(&cfg.FastTimers, "fast", cfg.FastTimers, "use shortened phase timers")
	flag.Parse()

	var db *store.Store
	if cfg.DBPath != "" {
		var err error
		db, err = store.Open(cfg.DBPath)
		if err != nil {
			log.Printf("store disabled: %v", err)
			db = nil
		}
	}

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		MaxMatches: cfg.MaxMatches,
		FastTimers: cfg.FastTimers,
		Store:      db,
		Voice:      integration.NewService(nil),
		Channel:    integration.NopVoice{},
	})
	if err != nil {
		log.Fatalf("server setup error: %v", err)
	}
	if err := srv.Start(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
