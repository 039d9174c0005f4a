package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"presence/internal/accounts"
	"presence/internal/clock"
	"presence/internal/config"
	"presence/internal/employee"
	"presence/internal/handler"
	"presence/internal/httpmiddleware"
	"presence/internal/live"
	"presence/internal/lock"
	"presence/internal/presence"
	"presence/internal/queue"
	"presence/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func run(cfg config.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(ctx, db.Client); err != nil {
		return err
	}

	redisClient, err := store.NewRedis(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	clk := clock.System(cfg.Location())

	employeeRepo := employee.NewRepository(db.Client)
	presenceRepo := presence.NewRepository(db.Client)
	accountRepo := accounts.NewRepository(db.Client)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "presence:provisioning")
	}

	inline := accounts.NewProvisioner(accountRepo, employeeRepo)
	var provisioner employee.Provisioner = inline
	if cfg.Provisioning == "queue" {
		provisioner = accounts.NewQueuedProvisioner(q)
		if cfg.QueueBackend == "memory" {
			// No separate worker can see an in-process queue.
			go func() {
				if err := inline.Run(ctx, q); err != nil {
					log.Printf("provisioning consumer stopped: %v", err)
				}
			}()
		}
	}

	var locker presence.Locker
	if cfg.LockBackend == "local" {
		locker = lock.NewLocal()
	} else {
		locker = lock.NewRedis(redisClient.Client, "presence:lock:", cfg.LockTTL)
	}

	employees := employee.NewService(employeeRepo, provisioner, clk)
	recorder := presence.NewRecorder(employees, presenceRepo, locker, clk)
	presences := presence.NewService(presenceRepo, employeeRepo, clk)

	authenticator := accounts.NewAuthenticator(accountRepo, accounts.TokenConfig{
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	if err := authenticator.EnsureDefaultAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("warning: default admin not ensured: %v", err)
	}

	hub := live.NewHub(originChecker(cfg.CORSOrigins))
	go hub.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", httpmiddleware.RequestIDHeader},
		ExposeHeaders:    []string{httpmiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))
	r.Use(httpmiddleware.SecurityHeaders(cfg.Production()))

	handler.New(handler.Deps{
		Scanner:   recorder,
		Presences: presences,
		Employees: employees,
		Auth:      authenticator,
		Publisher: hub,
		WS:        hub.ServeWS,
		Health: map[string]handler.HealthCheck{
			"db":    db.Healthy,
			"redis": redisClient.Healthy,
		},
		JWTKey:     cfg.JWTSigningKey,
		JWTIssuer:  cfg.JWTIssuer,
		ScanLimits: httpmiddleware.NewRateLimiter(cfg.RateLimitPerMin).Middleware(),
	}).Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}
	log.Println("server exited")
	return nil
}

// originChecker accepts websocket upgrades from the configured CORS origins.
func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
