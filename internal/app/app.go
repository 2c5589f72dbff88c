package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsdevblog/linkresolver/internal/config"
	"github.com/fsdevblog/linkresolver/internal/controllers"
	"github.com/fsdevblog/linkresolver/internal/db"
	"github.com/fsdevblog/linkresolver/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	ReadTimeout       = 5 * time.Second
	WriteTimeout      = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	ReadHeaderTimeout = 2 * time.Second
	ShutdownTimeout   = 10 * time.Second
	ConnectTimeout    = 10 * time.Second
)

type App struct {
	config     config.Config
	conn       any
	dbServices *services.Services
	Logger     *logrus.Logger
}

func New(appConf config.Config) (*App, error) {
	logger := appConf.Logger
	if logger == nil {
		logger = logrus.New()
	}

	ctx, cancel := context.WithTimeout(context.Background(), ConnectTimeout)
	defer cancel()

	conn, connErr := db.NewConnectionFactory(ctx, db.FactoryConfig{
		StorageType: appConf.DBType,
		DSN:         appConf.DatabaseDSN,
		Logger:      logger,
	})
	if connErr != nil {
		return nil, fmt.Errorf("open %s storage: %w", appConf.DBType, connErr)
	}

	dbServices, servicesErr := services.Factory(conn, appConf.DBType, logger)
	if servicesErr != nil {
		return nil, fmt.Errorf("init services: %w", servicesErr)
	}

	return &App{
		config:     appConf,
		conn:       conn,
		dbServices: dbServices,
		Logger:     logger,
	}, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

// Run запускает web сервер и блокируется до сигнала завершения или ошибки сервера.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := controllers.SetupRouter(controllers.RouterParams{
		LinkService: a.dbServices.LinkService,
		PingService: a.dbServices.PingService,
		AppConf:     a.config,
		Logger:      a.Logger,
	})

	s := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           router,
		ReadTimeout:       ReadTimeout,
		ReadHeaderTimeout: ReadHeaderTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutdown command received")
	case serverErr = <-errChan:
		a.Logger.WithError(serverErr).Error("router error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		a.Logger.WithError(err).Error("server shutdown error")
	}
	if err := a.closeStorage(); err != nil {
		a.Logger.WithError(err).Error("close storage error")
	}

	return serverErr
}

// closeStorage закрывает подключение к хранилищу. Для памяти ничего не делает.
func (a *App) closeStorage() error {
	switch conn := a.conn.(type) {
	case *gorm.DB:
		sqlDB, err := conn.DB()
		if err != nil {
			return fmt.Errorf("get sql db: %w", err)
		}
		return sqlDB.Close() //nolint:wrapcheck
	case *redis.Client:
		return conn.Close() //nolint:wrapcheck
	default:
		return nil
	}
}
