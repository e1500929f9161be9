package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/gigline/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Config is populated from the environment. The signing key has a dev default
// so the binary boots out of the box; deployments override it.
type Config struct {
	HTTPAddr         string `env:"HTTP_ADDR" envDefault:":8572"`
	DatabaseDSN      string `env:"DATABASE_DSN" envDefault:"file:gigline.db?cache=shared"`
	SigningKey       string `env:"SECRET_KEY" envDefault:"dev-signing-key-change-me"`
	AuthScheme       string `env:"AUTH_SCHEME" envDefault:"Bearer"`
	ContextKey       string `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	TokenWindowMins  int    `env:"ACCESS_TOKEN_EXPIRES_TIME_MINS" envDefault:"30"`
	ShutdownGraceSec int    `env:"SHUTDOWN_GRACE_SEC" envDefault:"10"`
}

func (c Config) GetSigningKey() string      { return c.SigningKey }
func (c Config) GetAuthScheme() string      { return c.AuthScheme }
func (c Config) GetContextKey() string      { return c.ContextKey }
func (c Config) GetTokenWindowMinutes() int { return c.TokenWindowMins }

var _ auth.Config = Config{}

// appLogger adapts a glog named logger to the printf-style logger the auth
// package consumes.
type appLogger struct {
	lgr glog.Logger
}

func (a appLogger) Debug(format string, args ...any) { a.lgr.Debug(fmt.Sprintf(format, args...)) }
func (a appLogger) Info(format string, args ...any)  { a.lgr.Info(fmt.Sprintf(format, args...)) }
func (a appLogger) Warn(format string, args ...any)  { a.lgr.Warn(fmt.Sprintf(format, args...)) }
func (a appLogger) Error(format string, args ...any) { a.lgr.Error(fmt.Sprintf(format, args...)) }

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("giglined"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		lgr.Error("config parse failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		lgr.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := auth.RunMigrations(ctx, db); err != nil {
		lgr.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	auther := auth.NewAuthenticator(repo, cfg).
		WithLogger(appLogger{lgr: lgr.GetLogger("auth")})

	gate := auth.NewGate(auther, cfg).
		WithLogger(appLogger{lgr: lgr.GetLogger("gate")})

	app := fiber.New(fiber.Config{
		AppName:               "giglined",
		DisableStartupMessage: true,
	})

	auth.RegisterAuthRoutes(app, gate,
		auth.WithControllerRepo(repo),
		auth.WithControllerAuther(auther),
		auth.WithControllerLogger(appLogger{lgr: lgr.GetLogger("http")}),
	)

	registerProtectedRoutes(app, gate, cfg)

	go func() {
		lgr.Info("listening", "addr", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			lgr.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	lgr.Info("shutting down")
	grace := time.Duration(cfg.ShutdownGraceSec) * time.Second
	if err := app.ShutdownWithTimeout(grace); err != nil {
		lgr.Error("shutdown error", "error", err)
	}
}

// registerProtectedRoutes mounts the route groups the CRUD collaborators hang
// off of. The handlers here only echo the resolved principal; the point is the
// gate wiring.
func registerProtectedRoutes(app *fiber.App, gate *auth.Gate, cfg Config) {
	app.Get("/me", gate.Authorized(), func(c *fiber.Ctx) error {
		identity, _ := auth.GetFiberIdentity(c, cfg.ContextKey)
		return c.JSON(fiber.Map{
			"userId": identity.ID(),
			"email":  identity.Email(),
			"role":   identity.Role(),
		})
	})

	members := app.Group("/api", gate.Authorized(), gate.Permissed(auth.RoleUser, auth.RoleAdmin))
	members.Get("/events", placeholder("events"))
	members.Get("/vacancies", placeholder("vacancies"))

	admin := app.Group("/admin", gate.Authorized(), gate.Permissed(auth.RoleAdmin))
	admin.Get("/partners", placeholder("partners"))
	admin.Get("/partnerships", placeholder("partnerships"))
}

func placeholder(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"resource": resource,
			"items":    []any{},
		})
	}
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
