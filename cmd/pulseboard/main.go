package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulseboard/pulseboard/internal/api"
	"github.com/pulseboard/pulseboard/internal/auth"
	"github.com/pulseboard/pulseboard/internal/buildinfo"
	"github.com/pulseboard/pulseboard/internal/config"
	"github.com/pulseboard/pulseboard/internal/scheduler"
	"github.com/pulseboard/pulseboard/internal/seed"
	"github.com/pulseboard/pulseboard/internal/service"
	"github.com/pulseboard/pulseboard/internal/store"
)

func main() {
	var (
		migrateOnly = flag.Bool("migrate", false, "apply database migrations and exit")
		checkOnce   = flag.Bool("check-once", false, "probe all due targets once and exit")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pulseboard %s (commit %s, built %s)\n",
			buildinfo.Version, buildinfo.GitCommit, buildinfo.BuildTime)
		return
	}

	// 1. Load and validate environment config
	envCfg, err := config.LoadEnvConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	if envCfg.AuthEnabled && config.IsWeakPassword(envCfg.AuthPassword) {
		log.Printf("[main] WARNING: AUTH_PASSWORD is weak; set a stronger password")
	}

	// 2. Open database (migrations apply on open)
	st, err := store.Open(envCfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *migrateOnly {
		log.Printf("[main] migrations applied, exiting")
		return
	}

	// 3. Wire services
	svc := service.NewUptimeService(st)
	sessions := auth.NewSessions(auth.Config{
		Enabled:   envCfg.AuthEnabled,
		Username:  envCfg.AuthUsername,
		Password:  envCfg.AuthPassword,
		SecretKey: envCfg.SessionSecretKey,
		MaxAge:    envCfg.SessionMaxAge,
	})

	if envCfg.TargetsSeedFile != "" {
		if err := seed.Apply(envCfg.TargetsSeedFile, svc); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: seed targets: %v\n", err)
			os.Exit(1)
		}
	}

	sched := scheduler.New(scheduler.Config{
		Store:       st,
		Tick:        envCfg.SchedulerTick,
		Concurrency: envCfg.Concurrency,
	})

	if *checkOnce {
		log.Printf("[main] running single probe cycle")
		sched.RunOnce()
		sched.Stop()
		return
	}

	gc, err := scheduler.NewRetentionGC(st, envCfg.RetentionDays, envCfg.RetentionSchedule)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: retention schedule: %v\n", err)
		os.Exit(1)
	}

	// 4. Start background loops and API server
	sched.Start()
	gc.Start()

	srv := api.NewServerWithAddress(envCfg.AppHost, envCfg.AppPort, envCfg, svc, sessions)
	go func() {
		log.Printf("pulseboard %s listening on %s:%d", buildinfo.Version, envCfg.AppHost, envCfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server error: %v", err)
		}
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal %s, shutting down...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	gc.Stop()
	sched.Stop()
	log.Println("Server stopped")
}
