package main

import (
	"log"

	api "sellerops-backend/cmd/api"
	accountdomain "sellerops-backend/internal/account/domain"
	accountRepo "sellerops-backend/internal/account/repository"
	accountUsecase "sellerops-backend/internal/account/usecase"
	orderdomain "sellerops-backend/internal/order/domain"
	orderRepo "sellerops-backend/internal/order/repository"
	"sellerops-backend/internal/order/scheduler"
	orderUsecase "sellerops-backend/internal/order/usecase"
	"sellerops-backend/pkg/config"
	"sellerops-backend/pkg/database"
	"sellerops-backend/pkg/gmail"
	"sellerops-backend/pkg/imap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&accountdomain.MailAccount{}, &orderdomain.SupplierOrder{}, &orderdomain.AutoFlagSettings{}, &orderdomain.SyncRun{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	accountRepository := accountRepo.NewAccountRepository(db)
	supplierOrderRepo := orderRepo.NewSupplierOrderRepository(db)
	settingsRepo := orderRepo.NewAutoFlagSettingsRepository(db)
	syncRunRepo := orderRepo.NewSyncRunRepository(db)

	// Initialize mail providers
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)
	imapService := imap.NewService()

	// Initialize use cases (dependency injection)
	syncUsecaseInstance := orderUsecase.NewSyncUsecase(supplierOrderRepo, settingsRepo, syncRunRepo, accountRepository, gmailService, imapService, cfg)
	orderUsecaseInstance := orderUsecase.NewOrderUsecase(supplierOrderRepo, settingsRepo, syncRunRepo)
	accountUsecaseInstance := accountUsecase.NewAccountUsecase(accountRepository)

	// Start the background sync scheduler
	syncScheduler := scheduler.NewSyncScheduler(syncUsecaseInstance, cfg.SyncInterval)
	syncScheduler.Start()
	defer syncScheduler.Stop()
	log.Printf("[Scheduler] Background sync started with interval %s", cfg.SyncInterval)

	// Initialize HTTP handler
	handler := api.NewHandler(orderUsecaseInstance, syncUsecaseInstance, accountUsecaseInstance, syncScheduler, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
