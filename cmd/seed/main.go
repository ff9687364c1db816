package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"clientportal/internal/auth"
	"clientportal/internal/catalog"
	"clientportal/internal/config"
	"clientportal/internal/domain/repositories"
	"clientportal/internal/repository/postgres"
	postgresPortal "clientportal/internal/repository/postgres/portal"
	serviceAuth "clientportal/internal/service/auth"
	servicePortal "clientportal/internal/service/portal"
	"clientportal/internal/storage"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all portal tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	clearData := flag.Bool("clear-data", false, "Delete all clients, folders, files and reports (keep schema)")
	withBlobs := flag.Bool("with-blobs", false, "Also upload demo files and reports (requires STORAGE_DRIVER=minio)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := clearPortalData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	var admin *auth.AdminClient
	if cfg.SupabaseKey != "" {
		admin = auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)
	} else {
		log.Println("⚠️  SUPABASE_KEY not set; demo users get random ids and cannot sign in")
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	clientRepo := postgresPortal.NewClientRepository(repoConfig)

	users, err := provisionUsers(ctx, admin, clientRepo, demoUsers())
	if err != nil {
		log.Fatalf("Failed to provision users: %v", err)
	}

	registry, err := catalog.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load service catalog: %v", err)
	}

	// Without --with-blobs only folders are seeded, so nothing reaches storage
	var blobs repositories.BlobStore = storage.NewMemoryStore()
	if *withBlobs {
		blobs, err = storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatalf("Failed to connect to blob storage: %v", err)
		}
	}

	gate := serviceAuth.NewOwnerGate()
	opts := servicePortal.OptionsFromConfig(cfg)
	treeService := servicePortal.NewTreeService(
		postgresPortal.NewFolderRepository(repoConfig),
		postgresPortal.NewFileRepository(repoConfig),
		clientRepo,
		blobs,
		postgres.NewTransactionManager(pool, logger),
		gate, opts, logger,
	)
	reportService := servicePortal.NewReportService(
		postgresPortal.NewReportRepository(repoConfig),
		clientRepo,
		blobs,
		registry,
		gate, opts, logger,
	)

	seeder := &portalSeeder{
		tree:      treeService,
		reports:   reportService,
		withBlobs: *withBlobs,
	}
	if err := seeder.seed(ctx, users); err != nil {
		log.Fatalf("Failed to seed portal data: %v", err)
	}

	log.Println("🎉 Seeding complete!")
}
