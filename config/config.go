package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

// WizardLockMarginSecs 向导锁比后端超时至少多出的秒数
const WizardLockMarginSecs = 5

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"pronetwork"`
	ServiceVer  string `env:"SERVICE_VERSION" envDefault:"0.1.0"`

	// 后端 API 配置（注册、登录、资料接口都在这个后端上）
	BackendBaseURL     string `env:"BACKEND_BASE_URL" envDefault:"http://127.0.0.1:8000"`
	BackendTimeoutSecs int    `env:"BACKEND_TIMEOUT_SECONDS" envDefault:"10"`
	BackendAuthScheme  string `env:"BACKEND_AUTH_SCHEME" envDefault:"Token"` // Token 或 Bearer

	// 后端熔断：连续失败次数阈值与熔断时长
	BackendBreakerFailures  int `env:"BACKEND_BREAKER_FAILURES" envDefault:"5"`
	BackendBreakerResetSecs int `env:"BACKEND_BREAKER_RESET_SECONDS" envDefault:"30"`

	// 存储驱动：memory 使用进程内仓库，postgres 使用数据库 + redis + rabbitmq
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`

	// PostgreSQL 配置
	PostgreSQLHost       string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort       string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser       string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword   string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase   string `env:"POSTGRESQL_DATABASE" envDefault:"pronetwork"`
	PostgreSQLSchema     string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode    string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle    int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen    int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`
	PostgreSQLReplicaDSN string `env:"POSTGRESQL_REPLICA_DSN"` // 只读副本，可为空

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"pronet"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT 配置
	JWTSecret        string `env:"JWT_SECRET"` // 必填，用于签名 JWT
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// 会话与 CSRF
	SessionSecret string `env:"SESSION_SECRET" envDefault:"pronetwork-session"`
	CSRFSecret    string `env:"CSRF_SECRET" envDefault:"pronetwork-csrf"`
	CSRFEnabled   bool   `env:"CSRF_ENABLED" envDefault:"false"`

	// 加密配置
	EncryptionKey string `env:"ENCRYPTION_KEY"` // 用于加密后端 access_token，32字节 AES-256
	EmailHashSalt string `env:"EMAILHASH_SALT"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	OTLPEndpoint string  `env:"OTLP_ENDPOINT"` // 为空时不启用
	OTLPSampler  float64 `env:"OTLP_SAMPLER" envDefault:"0.1"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"` // 每秒请求数

	// 注册向导配置
	WizardTTLMinutes    int `env:"WIZARD_TTL_MINUTES" envDefault:"60"`
	WizardLockSeconds   int `env:"WIZARD_LOCK_SECONDS" envDefault:"30"`
	ProfileCacheSeconds int `env:"PROFILE_CACHE_SECONDS" envDefault:"60"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}
}

// Validate 检查运行服务所必需的配置，由各个二进制在启动时调用
func Validate() error {
	if Cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	if len(Cfg.EncryptionKey) != 32 {
		return errors.New("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	// 向导锁要覆盖一次完整的后端调用，否则超时前会放进第二次提交
	if Cfg.WizardLockSeconds < Cfg.BackendTimeoutSecs+WizardLockMarginSecs {
		return fmt.Errorf("WIZARD_LOCK_SECONDS must be at least BACKEND_TIMEOUT_SECONDS + %d", WizardLockMarginSecs)
	}

	if Cfg.StorageDriver != "memory" && Cfg.StorageDriver != "postgres" {
		return errors.New("STORAGE_DRIVER must be memory or postgres")
	}

	if Cfg.EmailHashSalt == "" {
		log.Printf("WARN: EMAILHASH_SALT is not set, email hashes in events are unsalted")
	}

	if Cfg.CSRFEnabled && Cfg.CSRFSecret == "pronetwork-csrf" {
		log.Printf("WARN: CSRF_SECRET uses the default value")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) UsePostgres() bool {
	return strings.EqualFold(c.StorageDriver, "postgres")
}
