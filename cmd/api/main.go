package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/va-app/va-dian/internal/application/certificate"
	appdian "github.com/va-app/va-dian/internal/application/dian"
	"github.com/va-app/va-dian/internal/application/report"
	apptercero "github.com/va-app/va-dian/internal/application/tercero"
	"github.com/va-app/va-dian/internal/domain/tercero"
	"github.com/va-app/va-dian/internal/infrastructure/postgres"
	"github.com/va-app/va-dian/internal/infrastructure/storage"
	httpRouter "github.com/va-app/va-dian/internal/interfaces/http"
	"github.com/va-app/va-dian/pkg/config"
	"github.com/va-app/va-dian/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio para exponer la API")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Named("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de adjuntos")
	}

	store := postgres.NewRecordStore(pool)
	resolver := tercero.NewResolver(store, tercero.DefaultTables())
	terceroRepo := postgres.NewTerceroRepository(pool)
	docRepo := postgres.NewDIANDocumentRepository(pool)
	fileRepo := postgres.NewFileRepository(pool)
	glRepo := postgres.NewGLEntryRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	certRepo := postgres.NewCertificateRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	documentUC := appdian.NewDocumentUseCase(docRepo, fileRepo, terceroRepo, blobs, txRunner, log.Named("dian"))
	terceroUC := apptercero.NewUseCase(terceroRepo, resolver, log.Named("tercero"))
	reportUC := report.NewUseCase(glRepo, accountRepo, resolver, log.Named("report"))
	certificateUC := certificate.NewUseCase(certRepo, glRepo, accountRepo, resolver, txRunner, log.Named("certificate"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    60 << 20, // zip DIAN de hasta 50 MiB más el sobre multipart
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "va-dian API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		DocumentUC:    documentUC,
		TerceroUC:     terceroUC,
		ReportUC:      reportUC,
		CertificateUC: certificateUC,
		JWTSecret:     cfg.JWT.Secret,
		JWTIssuer:     cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
