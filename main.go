package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"voluntariado-backend/controller"
	"voluntariado-backend/dal"
	_ "voluntariado-backend/docs"
	"voluntariado-backend/infrastructure"
	"voluntariado-backend/middelware"
	"voluntariado-backend/models"
	"voluntariado-backend/repository"
	"voluntariado-backend/services"
	"voluntariado-backend/utils"
	"voluntariado-backend/utils/logger"
	"voluntariado-backend/utils/mailer"
	"voluntariado-backend/utils/paypal"
	"voluntariado-backend/utils/realtime"
	"voluntariado-backend/utils/storage"
	"voluntariado-backend/worker"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

//go:generate swag init -g main.go -o docs

const shutdownTimeout = 15 * time.Second

var config *models.Config

func Init() {
	var err error
	config, err = utils.GetConfig()
	if err != nil {
		log.Fatal(err)
	}
}

// @title Voluntariado API
// @version 1.0
// @description Volunteer matching platform: organizations publish opportunities, volunteers apply,
// @description completed activities earn hours and badges, and donors give through PayPal.
// @description
// @description ## AUTHENTICATION FLOW:
// @description 1. **POST /auth/register** creates a volunteer or organization account and returns a token
// @description 2. **POST /auth/login** returns a fresh token
// @description 3. Use the **Login** form above the operations, or paste `Bearer YOUR_TOKEN` into **Authorize**

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Enter 'Bearer' [space] and then your token in the text input below.
func main() {
	Init()

	var hooks []logrus.Hook
	if config.RollbarToken != "" {
		host, _ := os.Hostname()
		rollbarHook := logger.NewRollbarHook(config.RollbarToken, config.AppEnv, host, config.AppVersion)
		defer rollbarHook.Close()
		hooks = append(hooks, rollbarHook)
	}
	appLogger := logger.NewLogger(config.LogLevel, config.LogFormat, hooks...)
	appLogger.Debugf("Config loaded: %s", dal.PrintPrettyJSON(config))

	db, err := newDatabase(config, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize the database client: %v", err)
	}

	repos := repository.NewContainer(db, config, appLogger)
	jwtManager := middelware.NewJWTManager(config, appLogger, repos.GetUserRepository())
	hub := realtime.NewHub(appLogger, realtime.DefaultBuffer)
	imageStorage, err := storage.New(config, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to initialize image storage: %v", err)
	}

	svc := services.NewService(repos, services.Collaborators{
		Tokens:   jwtManager,
		Realtime: hub,
		Mailer:   mailer.New(config, appLogger),
		Storage:  imageStorage,
		Payments: paypal.NewClient(config, appLogger),
	}, appLogger, config)

	// START INFRASTRUCTURE WORKER (table provisioning and cron jobs)
	infraWorker, err := worker.NewService(config, appLogger, db, worker.Jobs{
		Badges:  svc.GetBadgeService(),
		Reports: svc.GetFinanceService(),
		Tokens:  jwtManager,
	})
	if err != nil {
		appLogger.Fatalf("Failed to create infrastructure worker: %v", err)
	}
	svc.AttachWorker(infraWorker)
	if err := infraWorker.StartInBackground(); err != nil {
		appLogger.Fatalf("Failed to start infrastructure worker: %v", err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := infraWorker.WaitForCompletion(ctx); err != nil {
			appLogger.Errorf("Tables are not ready, skipping badge catalog seed: %v", err)
			return
		}
		if err := svc.GetBadgeService().SeedDefaultBadges(ctx); err != nil {
			appLogger.Errorf("Failed to seed default badges: %v", err)
		}
	}()

	if config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	logging := middelware.NewLoggingMiddleware(appLogger)
	r.Use(logging.RequestID(), logging.StructuredLogger(), logging.Recovery())
	r.Use(middelware.NewCORSMiddleware(config).CORS())
	r.MaxMultipartMemory = config.UploadMaxBytes

	c := controller.NewController(svc, jwtManager, hub, config, appLogger)
	if local, ok := imageStorage.(*storage.LocalStorage); ok {
		c.ServeUploads(local.Dir())
	}
	c.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              config.AppHost + ":" + config.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Infof("Starting server on %s:%s", config.AppHost, config.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Infof("Received %s, shutting down", sig)

	// open event streams never finish on their own
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorf("Server shutdown failed: %v", err)
	}
	if err := infraWorker.Stop(); err != nil {
		appLogger.Errorf("Failed to stop infrastructure worker: %v", err)
	}
	appLogger.Info("Server stopped")
}

// newDatabase picks the store selected by storage_driver
func newDatabase(cfg *models.Config, log logger.Logger) (dal.DatabaseClientInterface, error) {
	if cfg.UsesMemoryStorage() {
		log.Warn("Using the in-process store, data is lost on restart")
		return dal.NewMemoryClient(infrastructure.HashKeys(cfg.DynamoDBTablePrefix)), nil
	}
	client, err := dal.NewDynamoDBClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: %w", err)
	}
	return client, nil
}
