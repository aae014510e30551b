package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"calorie_budget/internal/handlers"
	"calorie_budget/internal/logger"
	"calorie_budget/internal/repository"
	"calorie_budget/internal/repository/db"
	"calorie_budget/internal/server"
	"calorie_budget/internal/service"

	"github.com/spf13/viper"
)

const (
	envPrefix       = "CALORIE"
	defaultDBPath   = "calories.db"
	shutdownTimeout = 10 * time.Second
)

// @title                       Calorie Budget API
// @version                     1.0
// @description                 Depleting daily calorie budget with an eating-window gate.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfgErr := loadConfig()

	// init logger
	log := logger.Get(viper.GetString("log.level"))
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	loc, err := loadLocation(viper.GetString("tracker.location"))
	if err != nil {
		log.Fatalw("invalid tracker.location", "err", err)
	}

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, log, service.Config{
		SigningKey:    viper.GetString("auth.signing_key"),
		TokenTTL:      viper.GetDuration("auth.token_ttl"),
		EnforceWindow: viper.GetBool("tracker.enforce_window"),
		Location:      loc,
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// restore state, then start persister, decay and window gate
	services.Start(ctx, viper.GetDuration("tracker.decay_tick"), viper.GetDuration("tracker.window_tick"))

	// start HTTP server
	srv := server.New(server.Config{
		Port:              viper.GetString("port"),
		ReadHeaderTimeout: viper.GetDuration("http.read_header_timeout"),
		WriteTimeout:      viper.GetDuration("http.write_timeout"),
		IdleTimeout:       viper.GetDuration("http.idle_timeout"),
	}, apiHandler.InitRoutes())
	runHTTPServer(srv, log)

	// graceful shutdown
	waitForShutdown(cancel, services.Persister, srv, log)
}

// loadConfig reads configs/config.yml over built-in defaults. Environment
// variables such as CALORIE_DB_PATH override both. A missing file is not an error.
func loadConfig() error {
	viper.SetDefault("port", server.DefaultPort)
	viper.SetDefault("db.path", defaultDBPath)
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("auth.token_ttl", 30*24*time.Hour)
	viper.SetDefault("tracker.decay_tick", service.DefaultDecayTick)
	viper.SetDefault("tracker.window_tick", service.DefaultWindowTick)
	viper.SetDefault("tracker.location", "Local")
	viper.SetDefault("tracker.enforce_window", false)

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// loadLocation resolves the zone the eating window is read in.
func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	log.Infow("opening sqlite", "path", dbPath)
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, persister *service.Persister, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop schedulers and let the persister write the final snapshot
	cancel()
	select {
	case <-persister.Done():
	case <-time.After(shutdownTimeout):
		log.Errorw("persister did not finish final flush", "timeout", shutdownTimeout)
	}

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
