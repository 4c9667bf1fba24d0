package cfg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Minio   *MinIOCfg
	Http    *HTTPConfig
	Grpc    *GRPCConfig
	Db      *PGDBCfg
	Qdrant  *QdrantCfg
	Redis   *RedisCfg
	Ml      *MLCfg
	Llm     *LLMCfg
	Kafka   *KafkaCfg
	Data    *DataCfg
	Chat    *ChatCfg
	Staging *StagingCfg
}

// KafkaCfg. Пустой список брокеров отключает публикацию событий из outbox.
type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
	OutboxBatchSize   int
	OutboxPollPeriod  time.Duration
}

func (c *KafkaCfg) Enabled() bool {
	return c != nil && len(c.Brokers) > 0
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio; пусто — временные файлы на локальном диске
	BucketName        string // Название конкретного бакета в Minio
	MinioRootUser     string // Имя пользователя для доступа к Minio
	MinioRootPassword string // Пароль для доступа к Minio
	MinioUseSSL       bool
	ExpiryDays        int // объекты старше этого срока удаляет сам MinIO; 0 — правило не ставится
}

func (c *MinIOCfg) Enabled() bool {
	return c != nil && c.MinioEndpoint != ""
}

type HTTPConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	MaxUploadBytes     int64 // ограничение на тело multipart-запроса
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string // каталог с файлами golang-migrate
}

type QdrantCfg struct {
	Port                 int
	Host                 string // пусто — Qdrant не используется
	ApiKey               string
	QdrantCollectionName string // имя коллекции в Qdrant
	UseTLS               bool
}

func (c *QdrantCfg) Enabled() bool {
	return c != nil && c.Host != ""
}

type RedisCfg struct {
	Addr        string // пусто — история чата хранится в памяти процесса
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

func (c *RedisCfg) Enabled() bool {
	return c != nil && c.Addr != ""
}

// ModelCfg описывает одну ONNX-модель извлечения признаков.
type ModelCfg struct {
	Path        string
	InputName   string
	OutputName  string
	Layout      string  // nhwc | nchw
	OutputShape []int64 // форма выходного тензора, например 1,2048
}

type MLCfg struct {
	SharedLibraryPath string
	MaxConcurrent     int
	Anomaly           ModelCfg
	Recommend         ModelCfg
}

// LLMCfg. Пустой ключ отключает /chat.
type LLMCfg struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GalleryBackend определяет, где выполняется поиск ближайших соседей.
type GalleryBackend string

const (
	GalleryBackendMemory GalleryBackend = "memory"
	GalleryBackendQdrant GalleryBackend = "qdrant"
)

type DataCfg struct {
	CatalogPath       string
	RecommendDataPath string
	GalleryPath       string
	GalleryBackend    GalleryBackend
	RecommendTopK     int
}

type ChatCfg struct {
	SessionTTL time.Duration
	// MaxHistoryTurns — сколько последних реплик хранится в сессии, 0 без ограничения
	MaxHistoryTurns int
}

type StagingCfg struct {
	Dir               string // базовая директория для временных файлов; пусто — os.TempDir()
	UploadImagesLimit int    // лимит на число параллельных загрузок во временное хранилище
	ShutdownTimeout   time.Duration
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
// Переменные окружения могут быть предзаданы YAML-файлом из CONFIG_FILE.
func Load(log logger.Logger) (*Config, error) {
	if err := loadSource(getEnv("CONFIG_FILE")); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ml, err := loadMLCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	llm, err := loadLLMCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	data, err := loadDataCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	chat, err := loadChatCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	staging, err := loadStagingCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if data.GalleryBackend == GalleryBackendQdrant && !qdrant.Enabled() {
		return nil, fmt.Errorf("GALLERY_BACKEND=qdrant requires QDRANT_HOST")
	}

	return &Config{
		Minio:   minio,
		Http:    http,
		Grpc:    loadGRPCConfig(),
		Db:      db,
		Qdrant:  qdrant,
		Redis:   redis,
		Ml:      ml,
		Llm:     llm,
		Kafka:   kafka,
		Data:    data,
		Chat:    chat,
		Staging: staging,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "cartify.events"
		defaultBatchSize         = 100
		defaultPollPeriod        = 5 * time.Second
	)

	brokers := splitList(getEnv("KAFKA_BROKERS"))

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	batchSize, err := parseIntEnv("OUTBOX_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		return nil, e.Wrap("OUTBOX_BATCH_SIZE", err)
	}

	pollPeriod, err := parseDurationEnv("OUTBOX_POLL_PERIOD", defaultPollPeriod)
	if err != nil {
		return nil, e.Wrap("OUTBOX_POLL_PERIOD", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		OutboxBatchSize:   batchSize,
		OutboxPollPeriod:  pollPeriod,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL     = false
		defaultBucket     = "cartify-staging"
		defaultExpiryDays = 1
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	expiryDays, err := parseIntEnv("MINIO_EXPIRY_DAYS", defaultExpiryDays)
	if err != nil || expiryDays < 0 {
		err = fmt.Errorf("MINIO_EXPIRY_DAYS must be a non-negative integer: %w", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid MINIO_EXPIRY_DAYS")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnv("MINIO_ENDPOINT"),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		ExpiryDays:        expiryDays,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort              = "5000"
		defaultReadTimeout       = 15 * time.Second
		defaultWriteTimeout      = 90 * time.Second
		defaultIdleTimeout       = 60 * time.Second
		defaultAllowedOrigins    = "http://localhost:3000"
		defaultRateLimitRequests = 100
		defaultRateLimitWindow   = time.Minute
		defaultMaxUploadBytes    = 32 << 20
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	rateLimit, err := parseIntEnv("RATE_LIMIT_REQUESTS", defaultRateLimitRequests)
	if err != nil {
		log.Errorf(err, "invalid RATE_LIMIT_REQUESTS")
		return nil, err
	}

	rateWindow, err := parseDurationEnv("RATE_LIMIT_WINDOW", defaultRateLimitWindow)
	if err != nil {
		log.Errorf(err, "invalid RATE_LIMIT_WINDOW")
		return nil, err
	}

	maxUpload, err := parseIntEnv("HTTP_MAX_UPLOAD_BYTES", defaultMaxUploadBytes)
	if err != nil {
		log.Errorf(err, "invalid HTTP_MAX_UPLOAD_BYTES")
		return nil, err
	}

	return &HTTPConfig{
		Port:               port,
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		IdleTimeout:        idleTimeout,
		CORSAllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", defaultAllowedOrigins)),
		RateLimitRequests:  rateLimit,
		RateLimitWindow:    rateWindow,
		MaxUploadBytes:     int64(maxUpload),
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost       = "localhost"
		defaultPort       = "5432"
		defaultSSLMode    = "disable"
		defaultMaxConns   = 10
		defaultMigrations = "db/migrations"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	maxConns, err := parseIntEnv("POSTGRES_MAX_CONNS", defaultMaxConns)
	if err != nil || maxConns <= 0 {
		err = fmt.Errorf("POSTGRES_MAX_CONNS must be a positive integer: %w", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid POSTGRES_MAX_CONNS")
		return nil, err
	}

	return &PGDBCfg{
		Host:           getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:           getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:           user,
		Password:       password,
		DBName:         dbName,
		SSLMode:        getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MaxConns:       int32(maxConns),
		MigrationsPath: getEnvOrDefault("POSTGRES_MIGRATIONS_PATH", defaultMigrations),
	}, nil
}

func loadQdrantCfg(logger logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultCollection     = "cartify_gallery"
	)

	strPort := getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	port, err := strconv.Atoi(strPort)
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	return &QdrantCfg{
		Host:                 getEnv("QDRANT_HOST"),
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:               useTLS,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
	)

	dbStr := getEnvOrDefault("REDIS_DB_ID", strconv.Itoa(defaultDB))
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	return &RedisCfg{
		Addr:        getEnv("REDIS_ADDR"),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     max(readTimeout, writeTimeout),
	}, nil
}

func loadMLCfg(log logger.Logger) (*MLCfg, error) {
	const (
		defaultMaxConcurrent = 4
		defaultOutputShape   = "1,2048"
	)

	maxConcurrent, err := parseIntEnv("ML_MAX_CONCURRENT", defaultMaxConcurrent)
	if err != nil || maxConcurrent <= 0 {
		err = fmt.Errorf("ML_MAX_CONCURRENT must be a positive integer: %w", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid ML_MAX_CONCURRENT")
		return nil, err
	}

	anomalyShape, err := parseShapeEnv("ML_ANOMALY_OUTPUT_SHAPE", defaultOutputShape)
	if err != nil {
		log.Errorf(err, "invalid ML_ANOMALY_OUTPUT_SHAPE")
		return nil, err
	}

	recommendShape, err := parseShapeEnv("ML_RECOMMEND_OUTPUT_SHAPE", defaultOutputShape)
	if err != nil {
		log.Errorf(err, "invalid ML_RECOMMEND_OUTPUT_SHAPE")
		return nil, err
	}

	return &MLCfg{
		SharedLibraryPath: getEnv("ONNXRUNTIME_LIB"),
		MaxConcurrent:     maxConcurrent,
		Anomaly: ModelCfg{
			Path:        getEnvOrDefault("ML_ANOMALY_MODEL", "models/anomaly_resnet50.onnx"),
			InputName:   getEnvOrDefault("ML_ANOMALY_INPUT", "input"),
			OutputName:  getEnvOrDefault("ML_ANOMALY_OUTPUT", "output"),
			Layout:      getEnvOrDefault("ML_ANOMALY_LAYOUT", "nhwc"),
			OutputShape: anomalyShape,
		},
		Recommend: ModelCfg{
			Path:        getEnvOrDefault("ML_RECOMMEND_MODEL", "models/recommend_resnet50.onnx"),
			InputName:   getEnvOrDefault("ML_RECOMMEND_INPUT", "input"),
			OutputName:  getEnvOrDefault("ML_RECOMMEND_OUTPUT", "output"),
			Layout:      getEnvOrDefault("ML_RECOMMEND_LAYOUT", "nchw"),
			OutputShape: recommendShape,
		},
	}, nil
}

func loadLLMCfg(log logger.Logger) (*LLMCfg, error) {
	const (
		defaultModel   = "gemini-1.5-pro-latest"
		defaultTimeout = 60 * time.Second
	)

	timeout, err := parseDurationEnv("LLM_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid LLM_TIMEOUT")
		return nil, err
	}

	return &LLMCfg{
		APIKey:  getEnv("GOOGLE_API_KEY"),
		Model:   getEnvOrDefault("LLM_MODEL", defaultModel),
		Timeout: timeout,
	}, nil
}

func loadDataCfg(log logger.Logger) (*DataCfg, error) {
	const (
		defaultCatalogPath = "data/final_file.csv"
		defaultGalleryPath = "data/gallery.db"
		defaultTopK        = 5
	)

	catalog := getEnvOrDefault("CATALOG_PATH", defaultCatalogPath)

	backend := GalleryBackend(strings.ToLower(getEnvOrDefault("GALLERY_BACKEND", string(GalleryBackendMemory))))
	if backend != GalleryBackendMemory && backend != GalleryBackendQdrant {
		err := fmt.Errorf("unknown GALLERY_BACKEND %q: %w", backend, e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid GALLERY_BACKEND")
		return nil, err
	}

	topK, err := parseIntEnv("RECOMMEND_TOP_K", defaultTopK)
	if err != nil || topK <= 0 {
		err = fmt.Errorf("RECOMMEND_TOP_K must be a positive integer: %w", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid RECOMMEND_TOP_K")
		return nil, err
	}

	return &DataCfg{
		CatalogPath:       catalog,
		RecommendDataPath: getEnvOrDefault("RECOMMEND_DATA_PATH", catalog),
		GalleryPath:       getEnvOrDefault("GALLERY_PATH", defaultGalleryPath),
		GalleryBackend:    backend,
		RecommendTopK:     topK,
	}, nil
}

func loadChatCfg(log logger.Logger) (*ChatCfg, error) {
	const (
		defaultSessionTTL      = 30 * time.Minute
		defaultMaxHistoryTurns = 50
	)

	ttl, err := parseDurationEnv("CHAT_SESSION_TTL", defaultSessionTTL)
	if err != nil || ttl <= 0 {
		err = fmt.Errorf("CHAT_SESSION_TTL must be a positive duration: %w", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid CHAT_SESSION_TTL")
		return nil, err
	}

	maxTurns, err := parseIntEnv("CHAT_MAX_HISTORY_TURNS", defaultMaxHistoryTurns)
	// Реплики пишутся парами вопрос-ответ, нечётный лимит обрезал бы историю посреди пары
	if err != nil || maxTurns < 0 || maxTurns%2 != 0 {
		err = fmt.Errorf("CHAT_MAX_HISTORY_TURNS must be a non-negative even number: %w", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid CHAT_MAX_HISTORY_TURNS")
		return nil, err
	}

	return &ChatCfg{SessionTTL: ttl, MaxHistoryTurns: maxTurns}, nil
}

func loadStagingCfg(log logger.Logger) (*StagingCfg, error) {
	const (
		defaultUploadLimit     = 10
		defaultShutdownTimeout = 10 * time.Second
	)

	limit, err := parseIntEnv("UPLOAD_IMAGES_LIMIT", defaultUploadLimit)
	if err != nil {
		log.Errorf(err, "invalid UPLOAD_IMAGES_LIMIT")
		return nil, err
	}

	shutdown, err := parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		log.Errorf(err, "invalid SHUTDOWN_TIMEOUT")
		return nil, err
	}

	return &StagingCfg{
		Dir:               getEnv("STAGING_DIR"),
		UploadImagesLimit: limit,
		ShutdownTimeout:   shutdown,
	}, nil
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := getEnv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := getEnv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

// parseShapeEnv разбирает форму тензора вида "1,2048".
func parseShapeEnv(key, defaultValue string) ([]int64, error) {
	parts := splitList(getEnvOrDefault(key, defaultValue))
	if len(parts) == 0 {
		return nil, fmt.Errorf("%s: empty shape: %w", key, e.ErrIncorrectEnvVariable)
	}

	shape := make([]int64, len(parts))
	for i, p := range parts {
		dim, err := strconv.ParseInt(p, 10, 64)
		if err != nil || dim <= 0 {
			return nil, fmt.Errorf("%s: bad dimension %q: %w", key, p, e.ErrIncorrectEnvVariable)
		}
		shape[i] = dim
	}
	return shape, nil
}

// splitList разбивает список через запятую, отбрасывая пустые элементы.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
