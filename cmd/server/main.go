package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"clientportal/internal/auth"
	"clientportal/internal/catalog"
	"clientportal/internal/config"
	models "clientportal/internal/domain/models/portal"
	"clientportal/internal/domain/repositories"
	"clientportal/internal/handler"
	"clientportal/internal/middleware"
	"clientportal/internal/repository/postgres"
	postgresPortal "clientportal/internal/repository/postgres/portal"
	serviceAuth "clientportal/internal/service/auth"
	servicePortal "clientportal/internal/service/portal"
	"clientportal/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, closeLogs, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLogs()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"storage_driver", cfg.StorageDriver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up blob storage: %v", err)
	}

	registry, err := catalog.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load service catalog: %v", err)
	}

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	clientRepo := postgresPortal.NewClientRepository(repoConfig)
	folderRepo := postgresPortal.NewFolderRepository(repoConfig)
	fileRepo := postgresPortal.NewFileRepository(repoConfig)
	reportRepo := postgresPortal.NewReportRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Services
	gate := serviceAuth.NewOwnerGate()
	opts := servicePortal.OptionsFromConfig(cfg)
	treeService := servicePortal.NewTreeService(folderRepo, fileRepo, clientRepo, blobs, txManager, gate, opts, logger)
	reportService := servicePortal.NewReportService(reportRepo, clientRepo, blobs, registry, gate, opts, logger)
	clientService := servicePortal.NewClientService(clientRepo, gate, logger)

	// Handlers
	healthHandler := handler.NewHealthHandler(pool)
	catalogHandler := handler.NewCatalogHandler(registry, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	folderHandler := handler.NewFolderHandler(treeService, logger)
	fileHandler := handler.NewFileHandler(treeService, cfg.MaxUploadBytes, logger)
	reportHandler := handler.NewReportHandler(reportService, cfg.MaxUploadBytes, logger)
	clientHandler := handler.NewClientHandler(clientService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.HealthCheck)
	mux.HandleFunc("GET /api/service-types", catalogHandler.GetServiceTypes)

	// Routes any signed-in user can reach; ownership is checked per resource
	mux.HandleFunc("GET /api/me/tree", treeHandler.MyTree)
	mux.HandleFunc("GET /api/me/reports", reportHandler.MyReports)
	mux.HandleFunc("GET /api/files/{id}/download", fileHandler.Download)
	mux.HandleFunc("GET /api/files/{id}/preview", fileHandler.Preview)
	mux.HandleFunc("GET /api/reports/{id}/download", reportHandler.Download)
	mux.HandleFunc("GET /api/reports/{id}/preview", reportHandler.Preview)
	mux.HandleFunc("GET /api/folders/{id}/breadcrumbs", treeHandler.Breadcrumbs)

	// Staff routes; writes are further restricted to admins by the access gate
	mux.HandleFunc("GET /api/admin/clients", clientHandler.ListClients)
	mux.HandleFunc("GET /api/admin/clients/{id}", clientHandler.GetClient)
	mux.HandleFunc("GET /api/admin/clients/{id}/tree", treeHandler.ClientTree)
	mux.HandleFunc("POST /api/admin/clients/{id}/folders", folderHandler.CreateFolder)
	mux.HandleFunc("POST /api/admin/clients/{id}/files", fileHandler.UploadFiles)
	mux.HandleFunc("PATCH /api/admin/folders/{id}", folderHandler.RenameFolder)
	mux.HandleFunc("DELETE /api/admin/folders/{id}", folderHandler.DeleteFolder)
	mux.HandleFunc("PATCH /api/admin/files/{id}", fileHandler.RenameFile)
	mux.HandleFunc("DELETE /api/admin/files/{id}", fileHandler.DeleteFile)
	mux.HandleFunc("POST /api/admin/batch-delete", treeHandler.BatchDelete)
	mux.HandleFunc("GET /api/admin/reports", reportHandler.ListReports)
	mux.HandleFunc("POST /api/admin/reports", reportHandler.CreateReport)
	mux.HandleFunc("DELETE /api/admin/reports/{id}", reportHandler.DeleteReport)
	mux.HandleFunc("GET /api/admin/stats", reportHandler.Stats)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestLog → Auth → RequireRole → Routes
	h = middleware.RequireRole("/api/admin/", models.RoleAdmin, models.RoleSupport)(h)
	h = middleware.AuthMiddleware(jwtVerifier)(h)
	h = middleware.RequestLog(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  5 * time.Minute, // large multipart uploads
		WriteTimeout: 5 * time.Minute, // large downloads
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}

// newBlobStore picks the storage driver named in config
func newBlobStore(ctx context.Context, cfg *config.Config) (repositories.BlobStore, error) {
	switch cfg.StorageDriver {
	case "memory":
		slog.Warn("using in-memory blob storage; files are lost on restart")
		return storage.NewMemoryStore(), nil
	case "minio", "":
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q (supported: minio, memory)", cfg.StorageDriver)
	}
}
