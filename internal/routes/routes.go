package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/internal/controllers"
	"equiptrak/internal/lifecycle"
	"equiptrak/internal/listeners"
	"equiptrak/internal/queue"
	"equiptrak/internal/records"
	"equiptrak/internal/repositories"
	"equiptrak/internal/services"
	"equiptrak/pkg/config"
	"equiptrak/pkg/customvalidator"
	"equiptrak/pkg/eventbus"
	"equiptrak/pkg/middleware"
	"equiptrak/pkg/service"
)

// Handlers groups every controller the router mounts.
type Handlers struct {
	Company       *controllers.CompanyController
	Engineer      *controllers.EngineerController
	EquipmentType *controllers.EquipmentTypeController
	Equipment     *controllers.EquipmentController
	Record        *controllers.ServiceRecordController
	Certificate   *controllers.CertificateController
	Dashboard     *controllers.DashboardController
}

// InitRouter wires repositories, services and controllers and mounts them
// under /api. Background housekeeping stops when ctx is done.
func InitRouter(
	ctx context.Context,
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	queueClient queue.Enqueuer,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	logger *zap.Logger,
	cfg *config.Config,
) error {
	logger.Info("InitRouter: building routes")

	// repositories
	txManager := repositories.NewTxManager(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	companyRepo := repositories.NewCompanyRepository(dbConn)
	engineerRepo := repositories.NewEngineerRepository(dbConn)
	typeRepo := repositories.NewEquipmentTypeRepository(dbConn)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn)
	recordRepo := repositories.NewServiceRecordRepository(dbConn)

	generator, err := repositories.NewCertificateNumberGenerator(cfg.Certificate.Strategy, cfg.Certificate.Prefix, dbConn, cacheRepo)
	if err != nil {
		return err
	}
	logger.Info("certificate numbering", zap.String("strategy", cfg.Certificate.Strategy), zap.String("prefix", cfg.Certificate.Prefix))

	// core
	classifier := lifecycle.NewClassifier(cfg.Status.LookaheadDays, lifecycle.ParsePolicy(cfg.Status.OnMissingDate))
	builder := records.NewBuilder(classifier, generator, records.WithValidator(customvalidator.New()))
	gate := authz.NewGatekeeper()

	// services
	companyService := services.NewCompanyService(companyRepo, txManager, cacheRepo, classifier, gate, logger)
	engineerService := services.NewEngineerService(engineerRepo, gate, logger)
	typeService := services.NewEquipmentTypeService(typeRepo, gate, logger)
	equipmentService := services.NewEquipmentService(equipmentRepo, recordRepo, cacheRepo, classifier, gate, logger)
	recordService := services.NewServiceRecordService(txManager, recordRepo, equipmentRepo, typeRepo, cacheRepo, builder, classifier, gate, bus, logger)
	certificateService := services.NewCertificateService(recordRepo, companyRepo, classifier, gate, cfg.Server.FrontendURL, logger)
	mailer := services.NewQueueMailer(queueClient, cfg.Mail.From, logger)

	// listeners
	listeners.NewCertificateEmailListener(companyRepo, mailer, cfg.Server.FrontendURL, logger).Register(bus)

	dedup := controllers.NewRequestDeduplicator()
	go dedup.Cleanup(ctx, time.Minute)

	handlers := Handlers{
		Company:       controllers.NewCompanyController(companyService, logger),
		Engineer:      controllers.NewEngineerController(engineerService, logger),
		EquipmentType: controllers.NewEquipmentTypeController(typeService, logger),
		Equipment:     controllers.NewEquipmentController(equipmentService, logger),
		Record:        controllers.NewServiceRecordController(recordService, dedup, logger),
		Certificate:   controllers.NewCertificateController(certificateService, logger),
		Dashboard:     controllers.NewDashboardController(equipmentService, logger),
	}

	RegisterRoutes(e, handlers, middleware.NewAuthMiddleware(jwtSvc, logger), logger)

	logger.Info("InitRouter: routes ready")
	return nil
}

// RegisterRoutes mounts the handlers. Every route except /api/health needs a
// bearer token.
func RegisterRoutes(e *echo.Echo, h Handlers, authMW *middleware.AuthMiddleware, logger *zap.Logger) {
	api := e.Group("/api")
	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	secureGroup := api.Group("", authMW.Auth)
	adminOnly := middleware.RequireRole(logger, authz.RoleAdmin)

	runCompanyRouter(secureGroup, h.Company, adminOnly)
	runEngineerRouter(secureGroup, h.Engineer, adminOnly)
	runEquipmentTypeRouter(secureGroup, h.EquipmentType, adminOnly)
	runEquipmentRouter(secureGroup, h.Equipment, adminOnly)
	runServiceRecordRouter(secureGroup, h.Record, adminOnly)
	runCertificateRouter(secureGroup, h.Certificate)
	runDashboardRouter(secureGroup, h.Dashboard)
}
