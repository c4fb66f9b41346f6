package config

// Config 配置主体
type Config struct {
	Server            ServerConfig            `mapstructure:"server"`
	DB                DBConfig                `mapstructure:"database"`
	Redis             RedisConfig             `mapstructure:"redis"`
	Mongo             MongoConfig             `mapstructure:"mongo"`
	Logstash          LogstashConfig          `mapstructure:"logstash"`
	Scraper           ScraperConfig           `mapstructure:"scraper"`
	Sync              SyncConfig              `mapstructure:"sync"`
	Trends            TrendsConfig            `mapstructure:"trends"`
	Kafka             KafkaConfig             `mapstructure:"kafka"`
	KafkaSyncConsumer KafkaSyncConsumerConfig `mapstructure:"kafka_sync_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// MongoConfig Mongo配置，存放账号变更审计记录
type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

// ScraperConfig 外部数据源配置
type ScraperConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"`
	RetryCount int    `mapstructure:"retry_count"`
}

// SyncConfig 同步编排配置
type SyncConfig struct {
	BatchSize     int `mapstructure:"batch_size"`
	Concurrency   int `mapstructure:"concurrency"`
	RetryAttempts int `mapstructure:"retry_attempts"`
	RetryDelayMs  int `mapstructure:"retry_delay_ms"`
}

// TrendsConfig 趋势分析配置
type TrendsConfig struct {
	CacheTTLMinutes int `mapstructure:"cache_ttl_minutes"`
	MinDataPoints   int `mapstructure:"min_data_points"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaSyncConsumerConfig struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
