package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/cartify-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/cartify-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/cartify-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/imaging"
	"github.com/DRSN-tech/cartify-backend/internal/infrastructure/gemini"
	"github.com/DRSN-tech/cartify-backend/internal/infrastructure/kafka"
	"github.com/DRSN-tech/cartify-backend/internal/infrastructure/onnx"
	"github.com/DRSN-tech/cartify-backend/internal/infrastructure/staging"
	catalogRepo "github.com/DRSN-tech/cartify-backend/internal/repository/catalog"
	"github.com/DRSN-tech/cartify-backend/internal/repository/localfs"
	"github.com/DRSN-tech/cartify-backend/internal/repository/memory"
	s3Repo "github.com/DRSN-tech/cartify-backend/internal/repository/minio"
	"github.com/DRSN-tech/cartify-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/cartify-backend/internal/repository/pgdb/converter"
	qdrantRepo "github.com/DRSN-tech/cartify-backend/internal/repository/qdrant"
	redisRepo "github.com/DRSN-tech/cartify-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/cartify-backend/internal/repository/redis/converter"
	sqliteRepo "github.com/DRSN-tech/cartify-backend/internal/repository/sqlite"
	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/clients"
	"github.com/DRSN-tech/cartify-backend/pkg/closer"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"github.com/DRSN-tech/cartify-backend/pkg/postgres"
	"github.com/DRSN-tech/cartify-backend/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const initTimeout = 10 * time.Second

// App — собранное приложение: HTTP и gRPC серверы и все их зависимости.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv    *v1Http.Server
	grpcSrv    *v1Grpc.GRPCServer
	worker     *kafka.OutboxWorker
	stagingInf *staging.Infrastructure

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewApp поднимает все зависимости. При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:            cfg,
		logger:         log,
		closer:         closer.NewCloser(cfg.Staging.ShutdownTimeout),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	if err := a.init(); err != nil {
		shutdownCancel()
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Staging.ShutdownTimeout)
		defer cancel()
		if cerr := a.closer.Close(closeCtx); cerr != nil {
			log.Warnf("cleanup after failed init: %v", cerr)
		}
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	anomalyExt, recommendExt, err := a.initExtractors()
	if err != nil {
		return err
	}

	gallery, err := a.initGallery()
	if err != nil {
		return err
	}

	catalog, links, err := a.initCatalog()
	if err != nil {
		return err
	}

	imagesInfra, err := a.initStaging()
	if err != nil {
		return err
	}

	authUC, err := a.initAuth()
	if err != nil {
		return err
	}

	chatUC, err := a.initChat()
	if err != nil {
		return err
	}

	uc := v1Http.UseCases{
		Anomaly:   usecase.NewAnomalyUC(anomalyExt, imagesInfra, a.logger),
		Recommend: usecase.NewRecommendUC(recommendExt, gallery, links, a.cfg.Data.RecommendTopK, a.logger),
		Catalog:   usecase.NewCatalogUC(catalog),
		Auth:      authUC,
		Chat:      chatUC,
	}

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.cfg.Http, a.logger).Init(uc)
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	for _, service := range []string{v1Grpc.ServiceAnomaly, v1Grpc.ServiceRecommend, v1Grpc.ServiceCatalog, v1Grpc.ServiceAuth} {
		a.grpcSrv.SetServing(service, true)
	}
	a.grpcSrv.SetServing(v1Grpc.ServiceChat, a.cfg.Llm.APIKey != "")

	return nil
}

// initExtractors загружает обе CNN-модели в общий onnxruntime.
func (a *App) initExtractors() (*onnx.Extractor, *onnx.Extractor, error) {
	if err := onnx.InitEnvironment(a.cfg.Ml.SharedLibraryPath); err != nil {
		return nil, nil, err
	}
	a.closer.Add("onnxruntime", func(context.Context) error {
		return onnx.DestroyEnvironment()
	})

	anomaly, err := a.newExtractor("anomaly", &a.cfg.Ml.Anomaly)
	if err != nil {
		return nil, nil, err
	}

	recommend, err := a.newExtractor("recommend", &a.cfg.Ml.Recommend)
	if err != nil {
		return nil, nil, err
	}

	return anomaly, recommend, nil
}

func (a *App) newExtractor(name string, mc *config.ModelCfg) (*onnx.Extractor, error) {
	layout, err := imaging.ParseLayout(mc.Layout)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	session, err := onnx.NewSession(mc.Path, mc.InputName, mc.OutputName, layout.Shape(imaging.Side), mc.OutputShape)
	if err != nil {
		return nil, err
	}
	a.closer.Add(name+" model", func(context.Context) error {
		return session.Close()
	})

	a.logger.Infof("%s model loaded from %s", name, mc.Path)
	return onnx.NewExtractor(name, session, layout, a.cfg.Ml.MaxConcurrent, a.logger), nil
}

// initGallery читает предрассчитанные эмбеддинги из SQLite и выбирает бэкенд поиска.
func (a *App) initGallery() (usecase.GalleryRepository, error) {
	store, err := sqliteRepo.Open(a.cfg.Data.GalleryPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	gallery, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Infof("gallery loaded: %d entries, dim %d", gallery.Len(), gallery.Dim())

	if a.cfg.Data.GalleryBackend != config.GalleryBackendQdrant {
		return memory.NewGalleryRepo(gallery), nil
	}

	qc, err := clients.NewQdrantClient(a.cfg.Qdrant)
	if err != nil {
		return nil, err
	}
	a.closer.Add("qdrant", func(context.Context) error {
		return qc.Close()
	})

	if err := clients.EnsureCollection(ctx, qc, uint64(gallery.Dim())); err != nil {
		return nil, err
	}

	repo := qdrantRepo.NewGalleryRepo(qc.Client, a.cfg.Qdrant.QdrantCollectionName, gallery.Dim())
	uploaded, err := repo.Sync(ctx, gallery)
	if err != nil {
		return nil, err
	}
	a.logger.Infof("qdrant collection %s ready, uploaded %d points", a.cfg.Qdrant.QdrantCollectionName, uploaded)

	return repo, nil
}

// initCatalog загружает таблицу для поиска и, если она отдельная, таблицу ссылок для рекомендаций.
func (a *App) initCatalog() (*catalogRepo.Repo, *catalogRepo.Repo, error) {
	catalog, err := catalogRepo.LoadFile(a.cfg.Data.CatalogPath, domain.CatalogColumnArticleType)
	if err != nil {
		return nil, nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.logger.Infof("catalog loaded: %d records from %s", catalog.Len(), a.cfg.Data.CatalogPath)

	if a.cfg.Data.RecommendDataPath == a.cfg.Data.CatalogPath {
		return catalog, catalog, nil
	}

	links, err := catalogRepo.LoadFile(a.cfg.Data.RecommendDataPath, domain.CatalogColumnID, domain.CatalogColumnLink)
	if err != nil {
		return nil, nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.logger.Infof("recommendation links loaded: %d records from %s", links.Len(), a.cfg.Data.RecommendDataPath)

	return catalog, links, nil
}

// initStaging выбирает хранилище временных изображений: MinIO, если задан адрес, иначе локальный диск.
func (a *App) initStaging() (*staging.Infrastructure, error) {
	var (
		repo   usecase.ImageRepository
		bucket string
	)

	if a.cfg.Minio.Enabled() {
		mc, err := clients.NewMinIOClient(a.cfg.Minio)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		if err := clients.EnsureBucket(ctx, mc, a.cfg.Minio.BucketName); err != nil {
			return nil, err
		}

		s3 := s3Repo.NewImageRepo(mc, a.cfg.Minio.BucketName)
		if err := s3.EnsureExpiry(ctx, a.cfg.Minio.ExpiryDays); err != nil {
			a.logger.Warnf("staging bucket lifecycle not set: %v", err)
		}
		repo, bucket = s3, a.cfg.Minio.BucketName
	} else {
		fs, err := localfs.NewImageRepo(a.cfg.Staging.Dir)
		if err != nil {
			return nil, err
		}
		a.closer.Add("staging dir", func(context.Context) error {
			return fs.Close()
		})
		repo, bucket = fs, fs.Root()
	}

	a.stagingInf = staging.NewInfrastructure(repo, bucket, a.cfg.Staging.UploadImagesLimit, a.logger, a.shutdownCtx)
	return a.stagingInf, nil
}

// initAuth подключает PostgreSQL, применяет миграции и, если задан Kafka, запускает outbox.
func (a *App) initAuth() (*usecase.AuthUseCase, error) {
	db, err := initPGDB(context.Background(), a.logger, a.cfg)
	if err != nil {
		return nil, err
	}
	a.closer.Add("postgres", func(context.Context) error {
		db.Close()
		return nil
	})

	credRepo := pgdb.NewCredentialRepo(db.Pool, pgdbConv.NewCredentialConverter())
	txManager := tr.NewManager(db.Pool)

	var outboxRepo usecase.OutboxRepository
	if a.cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(a.logger, a.cfg.Kafka)
		if err != nil {
			return nil, err
		}
		a.closer.Add("kafka producer", func(context.Context) error {
			return producer.Close()
		})

		if err := producer.EnsureTopic(initTimeout); err != nil {
			a.logger.Warnf("kafka topic check failed, relying on broker auto-create: %v", err)
		}

		repo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverter())
		a.worker = kafka.NewOutboxWorker(repo, a.logger, producer, db.Dsn, a.cfg.Kafka.OutboxBatchSize, a.cfg.Kafka.OutboxPollPeriod)
		outboxRepo = repo
	}

	return usecase.NewAuthUC(credRepo, outboxRepo, txManager, 0, a.logger), nil
}

// initChat выбирает хранилище истории и модель. Без ключа API чат отвечает 503.
func (a *App) initChat() (*usecase.ChatUseCase, error) {
	var history usecase.ChatHistoryRepository
	if a.cfg.Redis.Enabled() {
		rc := clients.NewRedisClient(a.cfg.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to connect to redis: %w", err))
		}
		a.closer.Add("redis", rc.Close)
		history = redisRepo.NewChatHistoryRepo(rc, redisConv.NewChatTurnConverter(),
			a.cfg.Chat.SessionTTL, a.cfg.Chat.MaxHistoryTurns, a.logger)
	} else {
		history = memory.NewChatHistoryRepo(a.cfg.Chat.SessionTTL, a.cfg.Chat.MaxHistoryTurns)
	}

	if a.cfg.Llm.APIKey == "" {
		a.logger.Warnf("GOOGLE_API_KEY is not set, /chat will answer 503")
		return usecase.NewChatUC(nil, history, a.cfg.Llm.Timeout, a.logger), nil
	}

	model, err := gemini.NewChatModel(context.Background(), a.cfg.Llm.APIKey, a.cfg.Llm.Model, a.logger)
	if err != nil {
		return nil, err
	}
	a.closer.Add("gemini", func(context.Context) error {
		return model.Close()
	})

	return usecase.NewChatUC(model, history, a.cfg.Llm.Timeout, a.logger), nil
}

// Run запускает серверы и блокируется до сигнала остановки или фатальной ошибки.
func (a *App) Run() error {
	if a.worker != nil {
		a.worker.Start(a.shutdownCtx)
	}

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			a.logger.Errorf(err, "gRPC server failed")
			grpcErrCh <- err
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	a.stop()
	return appErr
}

// === Graceful shutdown ===
func (a *App) stop() {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Staging.ShutdownTimeout)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.grpcSrv.Stop(shutdownCtx); err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			a.logger.Errorf(err, "gRPC server shutdown error")
		} else {
			a.logger.Warnf("gRPC server shutdown timeout")
		}
	}

	if a.worker != nil {
		a.worker.Stop()
	}

	if a.stagingInf != nil {
		if err := a.stagingInf.WaitForCleanup(shutdownCtx); err != nil {
			a.logger.Warnf("staging cleanup did not finish, some temporary images may remain: %v", err)
		} else {
			a.logger.Infof("staging cleanup completed")
		}
	}
	a.shutdownCancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("resource close error: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
