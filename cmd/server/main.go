package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/Kipz123/airline-booking-backend/internal/config"
	"github.com/Kipz123/airline-booking-backend/internal/database"
	"github.com/Kipz123/airline-booking-backend/internal/handler"
	"github.com/Kipz123/airline-booking-backend/internal/middleware"
	"github.com/Kipz123/airline-booking-backend/internal/queue"
	"github.com/Kipz123/airline-booking-backend/internal/repository"
	"github.com/Kipz123/airline-booking-backend/internal/repository/memory"
	"github.com/Kipz123/airline-booking-backend/internal/router"
	"github.com/Kipz123/airline-booking-backend/internal/service"
)

// stores groups the repositories selected by STORE_DRIVER.
type stores struct {
	booking repository.Store
	users   repository.UserRepository
	tokens  repository.TokenRepository
	close   func() error
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Printf("store: using in-process memory store; data is lost on exit")
		ms := memory.New()
		return stores{booking: ms, users: ms.Users(), tokens: ms.Tokens(), close: func() error { return nil }}, nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return stores{}, err
	}
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return stores{}, err
		}
	}
	return stores{
		booking: repository.NewSQLStore(db),
		users:   repository.NewUserRepo(db),
		tokens:  repository.NewTokenRepo(db),
		close:   db.Close,
	}, nil
}

func logLevel(s string) glog.Lvl {
	switch s {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	case "off":
		return glog.OFF
	}
	return glog.INFO
}

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer func() { _ = st.close() }()

	// Seat release retry: broker first, in-process queue as fallback.
	inventory := service.NewSeatInventory(st.booking.Seats())
	localReleases := service.NewReleaseQueue(inventory, cfg.ReleaseMaxAttempts)
	releases := service.ReleaseChain{localReleases}
	var events service.EventPublisher
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(cfg.BrokerURL)
		releases = service.ReleaseChain{pub, localReleases}
		events = pub
		go func() {
			if err := queue.StartEventConsumer(ctx, cfg.BrokerURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("booking-consumer: %v", err)
			}
		}()
		go func() {
			err := queue.StartReleaseConsumer(ctx, cfg.BrokerURL, localReleases.Handle, pub, cfg.ReleaseMaxAttempts)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("release-consumer: %v", err)
			}
		}()
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	reconciler := service.NewReconciler(inventory, cfg.ReconcileBatch)
	if err := service.ScheduleJobs(scheduler, localReleases, reconciler, cfg.ReleaseRetryInterval, cfg.ReconcileInterval); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	scheduler.Start()

	catalog := service.NewFlightCatalog(st.booking)
	ledger := service.NewReservationLedger(st.booking.Reservations())
	booking := service.NewBookingOrchestrator(st.booking, releases, events)

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis: unavailable; rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s id=%s err=%v", v.Method, v.URI, v.Status, v.Latency, v.RequestID, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Admin-Key"},
	}))
	e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{Timeout: cfg.RequestTimeout}))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, st.users, st.tokens), cfg.JWTSecret, limiter)
	router.RegisterPublic(e, handler.NewFlightHandler(catalog, inventory))
	router.RegisterCustomer(e, handler.NewReservationHandler(booking, ledger), cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, handler.NewAdminHandler(catalog, booking, ledger), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("scheduler shutdown: %v", err)
	}
	if n := localReleases.Pending(); n > 0 {
		log.Printf("release-retry: %d seat release(s) still pending; the reconciler will cover them", n)
	}
}
