package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"thermostat_dashboard/internal/handlers"
	"thermostat_dashboard/internal/logger"
	"thermostat_dashboard/internal/pubsub"
	"thermostat_dashboard/internal/repository"
	"thermostat_dashboard/internal/repository/db"
	"thermostat_dashboard/internal/server"
	"thermostat_dashboard/internal/service"

	"github.com/spf13/viper"
)

const (
	defaultPort    = "8080"
	defaultDBPath  = "thermostat.db"
	defaultSimTick = 5 * time.Second
)

func main() {
	// load config.yml first so the logger level comes from config
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(logLevel())

	// open DB
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", defaultDBPath)
		dbPath = defaultDBPath
	}
	sqlDB, err := db.InitDB(dbPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies explicitly: store → feed → services → handlers
	repos := repository.NewRepository(sqlDB)
	feed := pubsub.NewFeed()
	services := service.NewService(repos, feed)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the sensor simulator
	go services.Simulator.Run(ctx, simTick())

	// start HTTP server
	srv := &server.Server{}
	go func() {
		port := viper.GetString("port")
		if port == "" {
			port = defaultPort
		}
		if err := srv.Run(port, apiHandler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()

	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

func logLevel() string {
	if lvl := viper.GetString("log.level"); lvl != "" {
		return lvl
	}
	return logger.InfoLevel
}

func simTick() time.Duration {
	if tick := viper.GetDuration("simulator.tick"); tick > 0 {
		return tick
	}
	return defaultSimTick
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
