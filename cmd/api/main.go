package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"salesnotes/internal/config"
	"salesnotes/internal/handler"
	"salesnotes/internal/infra/db"
	"salesnotes/internal/infra/messaging/kafka"
	infraRepo "salesnotes/internal/infra/repository"
	"salesnotes/internal/logger"
	"salesnotes/internal/server"
	"salesnotes/internal/usecase"
	"salesnotes/internal/validator"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}
	log.Info("database ready", zap.String("driver", cfg.DBDriver))

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	customerRepo := infraRepo.NewCustomerGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//売上イベント。ブローカー未設定なら送らない
	var publisher usecase.SalePublisher = usecase.NopSalePublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewSaleEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			return err
		}
		defer producer.Close()
		publisher = producer
	}

	//Usecase生成
	catalogValidator := validator.NewCatalogValidator()
	noteUC := usecase.NewSalesNoteUsecase(txm, validator.NewNoteValidator(), publisher, log)
	productUC := usecase.NewProductUsecase(productRepo, txm, catalogValidator, log, cfg.LowStockThreshold)
	customerUC := usecase.NewCustomerUsecase(customerRepo, txm, catalogValidator, log)
	dashboardUC := usecase.NewDashboardUsecase(txm, log, cfg.LowStockThreshold)
	auditUC := usecase.NewAuditLogUsecase(auditRepo, log)

	//Handler生成
	e := server.New(cfg, log, server.Handlers{
		Health:    handler.NewHealthHandler(),
		Products:  handler.NewProductHandler(productUC),
		Customers: handler.NewCustomerHandler(customerUC),
		Notes:     handler.NewSalesNoteHandler(noteUC),
		Dashboard: handler.NewDashboardHandler(dashboardUC),
		AuditLogs: handler.NewAuditLogHandler(auditUC),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx, e, cfg.Addr(), log)
}
