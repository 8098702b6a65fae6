package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Market   MarketConfig   `mapstructure:"market"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	// 对外访问对象的基础地址，空则按 endpoint/bucket 拼
	PublicBase string `mapstructure:"public_base"`
}

// PublicBaseURL 对象公开访问前缀
func (c MinIOConfig) PublicBaseURL() string {
	if c.PublicBase != "" {
		return strings.TrimRight(c.PublicBase, "/")
	}
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s", scheme, c.Endpoint, c.Bucket)
}

type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpire time.Duration `mapstructure:"access_token_expire"`
	Issuer            string        `mapstructure:"issuer"`
}

// MarketConfig 行情抓取配置
type MarketConfig struct {
	SinaQuoteURL    string        `mapstructure:"sina_quote_url"`
	ExchangeRateURL string        `mapstructure:"exchange_rate_url"`
	FetchInterval   time.Duration `mapstructure:"fetch_interval"`
	FetchTimeout    time.Duration `mapstructure:"fetch_timeout"`
}

// PricingConfig 成本核算常量。原来散落在各处的硬编码常量统一收到
// 配置里，便于按环境/测试覆盖。
type PricingConfig struct {
	CopperDensityCoeff   float64            `mapstructure:"copper_density_coeff"`
	AluminumDensityCoeff float64            `mapstructure:"aluminum_density_coeff"`
	TaxFactor            float64            `mapstructure:"tax_factor"`
	FreightSurcharge     float64            `mapstructure:"freight_surcharge"`
	Margin               float64            `mapstructure:"margin"`
	CategorySurcharges   []CategorySurcharge `mapstructure:"category_surcharges"`
}

// CategorySurcharge 分类加工费，按声明顺序做大小写不敏感的包含匹配，
// 先命中先生效
type CategorySurcharge struct {
	Keyword   string  `mapstructure:"keyword"`
	Surcharge float64 `mapstructure:"surcharge"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// 配置文件不存在，使用默认值 + 环境变量
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Pricing.CategorySurcharges) == 0 {
		cfg.Pricing.CategorySurcharges = DefaultCategorySurcharges()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("jwt.access_token_expire", "24h")
	v.SetDefault("jwt.issuer", "cableweb")

	v.SetDefault("market.sina_quote_url", "http://hq.sinajs.cn/list=nf_CU0")
	v.SetDefault("market.exchange_rate_url", "https://api.exchangerate-api.com/v4/latest/USD")
	v.SetDefault("market.fetch_interval", "1h")
	v.SetDefault("market.fetch_timeout", "5s")

	v.SetDefault("pricing.copper_density_coeff", 0.7)
	v.SetDefault("pricing.aluminum_density_coeff", 0.214)
	v.SetDefault("pricing.tax_factor", 0.935)
	v.SetDefault("pricing.freight_surcharge", 1500)
	v.SetDefault("pricing.margin", 1.15)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// DefaultCategorySurcharges 默认分类加工费表（RMB/吨）。
// BVR 在 BV 之前匹配，否则 "BVR" 会先被 "BV" 命中。
func DefaultCategorySurcharges() []CategorySurcharge {
	return []CategorySurcharge{
		{Keyword: "BVR", Surcharge: 1000},
		{Keyword: "RVV", Surcharge: 700},
		{Keyword: "BV", Surcharge: 200},
	}
}

func bindEnvVariables(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Database
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// MinIO
	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("minio.bucket", "MINIO_BUCKET")
	v.BindEnv("minio.public_base", "MINIO_PUBLIC_BASE")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Market feed
	v.BindEnv("market.sina_quote_url", "SINA_QUOTE_URL")
	v.BindEnv("market.exchange_rate_url", "EXCHANGE_RATE_URL")
}
