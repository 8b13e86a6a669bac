package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"profile-system/internal/controllers"
	"profile-system/internal/repositories"
	"profile-system/internal/services"
	"profile-system/pkg/config"
	"profile-system/pkg/filestorage"
	"profile-system/pkg/middleware"
	"profile-system/pkg/service"
)

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, logger *zap.Logger, cfg *config.Config) {
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)
	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Storage.UploadsDir)
	if err != nil {
		logger.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}

	// --- РЕПОЗИТОРИИ ---
	categoryRepo := repositories.NewCategoryRepository(dbConn)
	fieldRepo := repositories.NewFieldRepository(dbConn, logger)
	profileRepo := repositories.NewProfileRepository(dbConn, logger)
	reportRepo := repositories.NewReportRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- СЕРВИСЫ ---
	schemaService := services.NewSchemaService(categoryRepo, fieldRepo, cacheRepo, logger, cfg.Schema.CacheTTL)
	builderService := services.NewSchemaBuilderService(schemaService, categoryRepo, fieldRepo, cacheRepo, logger)
	profileService := services.NewProfileService(profileRepo, schemaService, fileStorage, logger)
	approvalService := services.NewApprovalService(profileRepo, schemaService, logger)
	reportService := services.NewReportService(reportRepo, logger)

	// --- КОНТРОЛЛЕРЫ ---
	schemaCtrl := controllers.NewSchemaController(schemaService, builderService, logger)
	profileCtrl := controllers.NewProfileController(profileService, logger)
	approvalCtrl := controllers.NewApprovalController(approvalService, logger)

	// --- РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runSchemaRouter(secureGroup, schemaCtrl, authMW)
	runProfileRouter(secureGroup, profileCtrl, authMW)
	runApprovalRouter(secureGroup, approvalCtrl, authMW)
	runReportRouter(secureGroup, reportService, logger, authMW)

	logger.Info("InitRouter: Создание маршрутов завершено")
}
