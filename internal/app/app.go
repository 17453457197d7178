package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sina-mobarez/BankSys/internal/controller"
	"github.com/sina-mobarez/BankSys/internal/core"
	"github.com/sina-mobarez/BankSys/internal/middlewareinternal"
	"github.com/sina-mobarez/BankSys/internal/model"
	"github.com/sina-mobarez/BankSys/internal/repository"
	"github.com/sina-mobarez/BankSys/internal/service"
)

type App struct {
	cfg    *Config
	Router *chi.Mux
	db     *repository.Database
	Logger *zap.Logger
	Server *http.Server

	AccountService core.AccountService
	UserService    core.UserService
}

// New wires storage, services and routes. An empty DatabaseURI selects
// in-memory storage.
func New(ctx context.Context, cfg *Config, logger *zap.Logger) (*App, error) {
	app := &App{
		cfg:    cfg,
		Router: chi.NewRouter(),
		Logger: logger,
	}

	hasher, err := cfg.Hasher()
	if err != nil {
		return nil, err
	}
	userOpts := []model.UserOption{model.WithHasher(hasher)}

	var (
		accountRepo repository.AccountRepository
		userRepo    repository.UserRepository
	)
	if cfg.DatabaseURI == "" {
		logger.Warn("DATABASE_URI is empty, using in-memory storage")
		accountRepo = repository.NewMemoryAccountRepository()
		userRepo = repository.NewMemoryUserRepository(userOpts...)
	} else {
		if err := app.initDB(ctx); err != nil {
			return nil, err
		}
		accountRepo = repository.NewAccountRepository(app.db)
		userRepo = repository.NewUserRepository(app.db, userOpts...)
	}

	app.AccountService = service.NewAccountService(accountRepo, logger)
	app.UserService = service.NewUserService(userRepo, hasher, logger)

	app.initRouter()
	return app, nil
}

func (a *App) initDB(ctx context.Context) error {
	dbConfig := repository.DatabaseConfig{
		DSN:            a.cfg.DatabaseURI,
		MigrationsPath: a.cfg.MigrationsPath,
	}

	db, err := repository.NewDatabase(ctx, dbConfig)
	if err != nil {
		a.Logger.Error("Database initialization failed",
			zap.String("dsn", a.cfg.MaskDBPassword()),
			zap.Error(err))
		return fmt.Errorf("database initialization failed: %w", err)
	}

	a.db = db
	a.Logger.Info("Database initialized successfully",
		zap.String("dsn", a.cfg.MaskDBPassword()),
		zap.String("migrations_path", a.cfg.MigrationsPath))

	return nil
}

func (a *App) initRouter() {
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.RealIP)
	a.Router.Use(middlewareinternal.RequestLogger(a.Logger))
	a.Router.Use(middleware.Recoverer)

	accountController := controller.NewAccountController(a.AccountService, a.Logger)
	userController := controller.NewUserController(a.UserService, a.Logger)

	a.Router.Route("/api/accounts", func(r chi.Router) {
		r.Post("/", accountController.Open)
		r.Route("/{number}", func(r chi.Router) {
			r.Get("/", accountController.Get)
			r.Post("/deposit", accountController.Deposit)
			r.Post("/withdraw", accountController.Withdraw)
			r.Post("/transfer", accountController.Transfer)
		})
	})

	a.Router.Route("/api/users", func(r chi.Router) {
		r.Post("/", userController.Register)
		r.Route("/{username}", func(r chi.Router) {
			r.Get("/", userController.Get)
			r.Post("/verify", userController.VerifyPassword)
			r.Put("/password", userController.ChangePassword)
			r.Put("/phone", userController.UpdatePhone)
			r.Put("/address", userController.UpdateAddress)
		})
	})
}

// Run serves HTTP until ctx is cancelled or the listener fails.
func (a *App) Run(ctx context.Context) error {
	a.Server = &http.Server{
		Addr:    a.cfg.RunAddress,
		Handler: a.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("Starting HTTP server", zap.String("address", a.cfg.RunAddress))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down server...")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
