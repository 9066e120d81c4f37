package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"teamforge/config"
	"teamforge/docs"
	"teamforge/handlers"
	"teamforge/internal/health"
	"teamforge/internal/identity"
	"teamforge/internal/service"
	"teamforge/internal/store"
	"teamforge/internal/store/sqlite"
	"teamforge/internal/store/supabase"
	"teamforge/middleware"
	"teamforge/utils"
)

// @title Teamforge API
// @version 1.0
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := config.NewLogger(cfg.Log)

	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(healthcheck(cfg))
	}

	st, provider, err := openStore(cfg, log)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer st.Close()

	teams := service.NewTeams(service.TeamsConfig{
		Projects:    st,
		Memberships: st,
		Profiles:    st,
		Policy:      cfg.Visibility,
		Timeout:     cfg.Store.Timeout,
		Logger:      log,
	})
	app := newApp(cfg, log, handlers.NewApplicationHandler(teams, log), provider)

	grpcServer := grpc.NewServer()
	checker := health.NewChecker(st, cfg.Server.HealthInterval, log)
	checker.Register(grpcServer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"port":       cfg.Server.Port,
			"store":      cfg.Store.Driver,
			"visibility": cfg.Visibility,
		}).Info("Starting API server")
		return app.Listen(":" + cfg.Server.Port)
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		log.WithField("port", cfg.Server.GRPCPort).Info("Starting gRPC health server")
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		checker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		grpcServer.GracefulStop()
		return app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		log.WithError(err).Fatal("Server stopped with error")
	}
	log.Info("Server shut down gracefully")
}

// openStore selects the backend and the identity provider that goes with it.
func openStore(cfg *config.Config, log *logrus.Logger) (store.Store, identity.Provider, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		st, err := sqlite.Open(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Warn("Using the development identity provider: bearer tokens are trusted as user ids")
		return st, identity.DevProvider{}, nil
	default:
		rest, err := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey, cfg.Store.Timeout)
		if err != nil {
			return nil, nil, err
		}
		auth, err := config.NewSupabaseClient(cfg.Supabase)
		if err != nil {
			return nil, nil, err
		}
		return supabase.New(rest, log), identity.NewSupabaseProvider(auth), nil
	}
}

func newApp(cfg *config.Config, log *logrus.Logger, h *handlers.ApplicationHandler, provider identity.Provider) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               docs.SwaggerInfo.Title,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
				message = fe.Message
			}
			return utils.RespondWithError(c, code, message)
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger(log))

	app.Get("/swagger/*", fiberSwagger.WrapHandler)
	app.Get("/health", h.Health)

	apiV1 := app.Group("/api/v1", middleware.Authenticate(provider, log))
	h.RegisterRoutes(apiV1)
	return app
}

// healthcheck probes the local gRPC health service, for container health checks.
func healthcheck(cfg *config.Config) int {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	status, err := health.Probe(ctx, "127.0.0.1:"+cfg.Server.GRPCPort)
	if err != nil || status != healthpb.HealthCheckResponse_SERVING {
		fmt.Fprintf(os.Stderr, "unhealthy: status=%s err=%v\n", status, err)
		return 1
	}
	return 0
}
