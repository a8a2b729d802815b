package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agenda/config"
	_ "agenda/docs"
	"agenda/internal/calendar"
	"agenda/internal/lock"
	"agenda/internal/notification"
	"agenda/internal/repository"
	"agenda/internal/service"
	"agenda/internal/storage"
	"agenda/internal/transport/rest"
	"agenda/pkg/database"
	"agenda/pkg/logger"
	"agenda/pkg/timezone"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Agenda API
// @version 1.0
// @description API записи на прием и сверки с внешними календарями врачей

// @contact.name API Support
// @contact.email support@agenda.local

// @host localhost:8080
// @BasePath /api/v1
func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		log.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer db.Close()

	log.Info("Запуск миграций базы данных")
	if err := database.RunMigrations(db, "./migrations", log); err != nil {
		log.Fatal("Ошибка при выполнении миграций", zap.Error(err))
	}
	log.Info("Миграции успешно выполнены")

	normalizer, err := timezone.NewNormalizer(cfg.Timezone.Supported, cfg.Timezone.Default)
	if err != nil {
		log.Fatal("Не удалось инициализировать временные зоны", zap.Error(err))
	}

	var reportStorage storage.ReportStorage
	if cfg.S3.Endpoint != "" {
		s3Storage, err := storage.NewS3Storage(cfg.S3, log)
		if err != nil {
			log.Fatal("Не удалось инициализировать S3 хранилище", zap.Error(err))
		}
		reportStorage = s3Storage
		log.Info("S3 хранилище успешно инициализировано", zap.String("endpoint", cfg.S3.Endpoint))
	} else {
		log.Warn("S3 хранилище не настроено, отчеты синхронизации не сохраняются")
	}

	var locker lock.DoctorLocker = lock.NoopLocker{}
	if cfg.Redis.Addr != "" {
		redisClient, err := lock.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		defer redisClient.Close()
		locker = lock.NewRedisDoctorLocker(redisClient, cfg.Redis.LockTTL)
		log.Info("Redis подключен", zap.String("addr", cfg.Redis.Addr))
	} else {
		log.Warn("Redis не настроен, бронирование защищено только ограничениями БД")
	}

	var gateway calendar.Gateway
	if cfg.Calendar.ServiceAccount != "" && cfg.Calendar.PrivateKeyPEM != "" {
		googleClient, err := calendar.NewGoogleClient(cfg.Calendar, log)
		if err != nil {
			log.Fatal("Не удалось инициализировать клиент календаря", zap.Error(err))
		}
		gateway = googleClient
		log.Info("Клиент внешнего календаря инициализирован")
	} else {
		log.Warn("Внешний календарь не настроен, проверка занятости и синхронизация недоступны")
	}

	repos := repository.NewRepositories(db)

	services := service.NewServices(service.Deps{
		Repos:         repos,
		Gateway:       gateway,
		Locker:        locker,
		Notifier:      notification.NewWebhookNotifier(cfg.Notify, log),
		ReportStorage: reportStorage,
		Normalizer:    normalizer,
		Logger:        log,
		Config:        cfg,
	})

	handler := rest.NewHandler(services, log, cfg, normalizer)

	router := gin.Default()

	handler.InitRoutes(router)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	srv := &http.Server{
		Addr:           ":" + cfg.HTTP.Port,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderMB << 20,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	log.Info("Сервер запущен", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Выключение сервера...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Ошибка при остановке сервера", zap.Error(err))
	}

	log.Info("Сервер успешно остановлен")
}
