package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"

	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/config"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/db"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/events"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/models"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/notify"
	"github.com/nedaZarei/Cloud_ImageProcessingService/ImageTranslator/pkg/storage"
)

// Processor runs the OCR -> detect -> translate pipeline for one image.
type Processor interface {
	ProcessUpload(ctx context.Context, imagePath string, languages models.LanguageSet, destLang string) (*models.PipelineResult, error)
}

type Service struct {
	cfg       *config.Config
	e         *echo.Echo
	processor Processor

	//optional sinks, nil when disabled
	RequestDatabase db.RequestDatabase
	archive         storage.ImageArchive
	publisher       events.Publisher
	notifier        notify.Notifier
}

func NewService(cfg *config.Config, processor Processor) *Service {
	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.Server.Debug
	e.Renderer = newTemplateRenderer()
	return &Service{
		e:         e,
		cfg:       cfg,
		processor: processor,
	}
}

// StartService connects the enabled sinks and serves until ctx is cancelled.
func (s *Service) StartService(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.Upload.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %v", err)
	}
	if err := s.connectSinks(); err != nil {
		return err
	}
	defer s.closeSinks()

	//setting up echo server with middleware
	s.e.Use(middleware.Logger())
	s.e.Use(middleware.Recover())
	s.registerRoutes()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.e.Start(s.cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %v", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.e.Shutdown(shutdownCtx)
	}
}

func (s *Service) registerRoutes() {
	s.e.GET("/", s.Index)
	s.e.POST("/", s.Upload)
	s.e.Static("/static/uploads", s.cfg.Upload.Dir)
	s.e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	v1 := s.e.Group("/api/v1")
	v1.POST("/translate", s.Translate)
	v1.GET("/request/:id", s.GetRequestStatus)
}

func (s *Service) connectSinks() error {
	if s.cfg.Postgres.Enabled {
		dB, err := sqlx.Open("postgres", fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			s.cfg.Postgres.Host, s.cfg.Postgres.Port, s.cfg.Postgres.Username, s.cfg.Postgres.Password, s.cfg.Postgres.Database))
		if err != nil {
			return fmt.Errorf("failed to connect to Postgres: %v", err)
		}
		s.RequestDatabase, err = db.NewRequestDatabase(s.cfg.Postgres.AutoCreate, dB)
		if err != nil {
			return fmt.Errorf("failed to initialize request database: %v", err)
		}
		log.Println("connected to Postgres")
	}

	if s.cfg.RabbitMQ.Enabled {
		publisher, err := events.NewRabbitPublisher(s.cfg.RabbitMQ.Host, s.cfg.RabbitMQ.Port,
			s.cfg.RabbitMQ.Username, s.cfg.RabbitMQ.Password, s.cfg.RabbitMQ.Queue)
		if err != nil {
			return err
		}
		s.publisher = publisher
		log.Println("connected to RabbitMQ")
	}

	if s.cfg.Minio.Enabled {
		archive, err := storage.NewMinioArchive(s.cfg.Minio.Endpoint, s.cfg.Minio.AccessKey,
			s.cfg.Minio.SecretKey, s.cfg.Minio.Bucket, s.cfg.Minio.Secure)
		if err != nil {
			return err
		}
		s.archive = archive
		log.Println("connected to Minio")
	}

	if s.cfg.Email.Enabled {
		s.notifier = notify.NewEmailNotifier(s.cfg.Email.APIKey, s.cfg.Email.FromName, s.cfg.Email.From)
	}
	return nil
}

func (s *Service) closeSinks() {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Printf("failed to close RabbitMQ publisher: %v", err)
		}
	}
}
