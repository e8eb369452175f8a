package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/amora-app/media-pipeline/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// NATSConfig holds NATS JetStream configuration.
// Event publishing is disabled when URL is empty.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	ConsumerName   string        `mapstructure:"consumer_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	AckWait        time.Duration `mapstructure:"ack_wait"`
	MaxDeliver     int           `mapstructure:"max_deliver"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// AllowedOrigins for CORS; empty allows every origin
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig holds object store configuration
type StorageConfig struct {
	// Driver is one of "minio", "s3" or "local"
	Driver    string `mapstructure:"driver"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	// PublicBaseURL is prefixed to keys to build public URLs
	PublicBaseURL string `mapstructure:"public_base_url"`
	// LocalPath is the root directory of the local driver
	LocalPath        string        `mapstructure:"local_path"`
	BootstrapTimeout time.Duration `mapstructure:"bootstrap_timeout"`
}

// TranscoderConfig holds ffmpeg/ffprobe configuration
type TranscoderConfig struct {
	FFmpegPath  string `mapstructure:"ffmpeg_path"`
	FFprobePath string `mapstructure:"ffprobe_path"`
	// SearchPaths are directories probed when the configured path is not executable
	SearchPaths []string `mapstructure:"search_paths"`
	// Timeout bounds one transcode or probe call including all of its tool invocations
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	Threads       int           `mapstructure:"threads"`
	ScratchDir    string        `mapstructure:"scratch_dir"`
}

// TransformConfig holds image pipeline configuration
type TransformConfig struct {
	WorkerConcurrency int           `mapstructure:"worker_concurrency"`
	TransformTimeout  time.Duration `mapstructure:"timeout"`
	MaxDecodedPixels  int64         `mapstructure:"max_decoded_pixels"`
}

// LimitsConfig holds per-kind size caps in bytes
type LimitsConfig struct {
	MaxImageSize int64 `mapstructure:"max_image_size"`
	MaxVideoSize int64 `mapstructure:"max_video_size"`
	MaxAudioSize int64 `mapstructure:"max_audio_size"`
	MaxFileSize  int64 `mapstructure:"max_file_size"`
}

// CloudflareConfig holds Cloudflare cache purge configuration.
// Purging is disabled when APIToken or ZoneID is empty.
type CloudflareConfig struct {
	APIToken string `mapstructure:"api_token"`
	ZoneID   string `mapstructure:"zone_id"`
}

// RetryConfig holds exponential backoff settings
type RetryConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

// MediaConfig holds everything needed to run the processing pipeline in-process
type MediaConfig struct {
	BaseConfig `mapstructure:",squash"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Transcoder TranscoderConfig `mapstructure:"transcoder"`
	Transform  TransformConfig  `mapstructure:"transform"`
	Limits     LimitsConfig     `mapstructure:"limits"`
	Cloudflare CloudflareConfig `mapstructure:"cloudflare"`
	NATS       NATSConfig       `mapstructure:"nats"`
}

// APIConfig holds configuration for the media API server
type APIConfig struct {
	MediaConfig `mapstructure:",squash"`
	Server      ServerConfig `mapstructure:"server"`
}

// CleanupWorkerConfig holds configuration for the cleanup retry worker
type CleanupWorkerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Cloudflare CloudflareConfig `mapstructure:"cloudflare"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Retry      RetryConfig      `mapstructure:"retry"`
}

// LoadAPIConfig loads configuration for the media API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	setMediaDefaults(v)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 120)
	v.SetDefault("server.write_timeout", 720)
	v.SetDefault("server.idle_timeout", 120)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if err := cfg.validateTimeouts(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateTimeouts requires the HTTP write timeout to exceed a whole transcode plus the thumbnail transform.
// A zero write timeout is not checked.
func (c *APIConfig) validateTimeouts() error {
	write := time.Duration(c.Server.WriteTimeout) * time.Second
	if write <= 0 {
		return nil
	}
	if budget := c.Transcoder.Timeout + c.Transform.TransformTimeout; write <= budget {
		return fmt.Errorf("server.write_timeout (%s) must exceed transcoder.timeout + transform.timeout (%s)", write, budget)
	}
	return nil
}

// LoadMediaConfig loads pipeline configuration for in-process tools such as mediactl
func LoadMediaConfig(configFile string, envPath string) (*MediaConfig, error) {
	v := configureViper("mediactl", configFile, envPath)

	setMediaDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg MediaConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadCleanupWorkerConfig loads configuration for the cleanup retry worker
func LoadCleanupWorkerConfig(configFile string, envPath string) (*CleanupWorkerConfig, error) {
	v := configureViper("worker-cleanup", configFile, envPath)

	setStorageDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("nats.consumer_name", "media-cleanup-worker")
	v.SetDefault("retry.initial_interval", "2s")
	v.SetDefault("retry.max_interval", "1m")
	v.SetDefault("retry.max_elapsed_time", "10m")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg CleanupWorkerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if cfg.NATS.URL == "" {
		return nil, errors.New("nats.url is required")
	}

	return &cfg, nil
}

func setMediaDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	setStorageDefaults(v)
	setNATSDefaults(v)
	v.SetDefault("transcoder.ffmpeg_path", "ffmpeg")
	v.SetDefault("transcoder.ffprobe_path", "ffprobe")
	v.SetDefault("transcoder.search_paths", []string{"/opt/homebrew/bin", "/usr/bin", "/usr/local/bin"})
	v.SetDefault("transcoder.timeout", "10m")
	v.SetDefault("transcoder.max_concurrent", 2)
	v.SetDefault("transcoder.threads", 12)
	v.SetDefault("transform.worker_concurrency", 4)
	v.SetDefault("transform.timeout", "60s")
	v.SetDefault("transform.max_decoded_pixels", 100_000_000)
	v.SetDefault("limits.max_image_size", domain.DefaultMaxImageSize)
	v.SetDefault("limits.max_video_size", domain.DefaultMaxVideoSize)
	v.SetDefault("limits.max_audio_size", domain.DefaultMaxAudioSize)
	v.SetDefault("limits.max_file_size", domain.DefaultMaxFileSize)
}

func setStorageDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "minio")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.local_path", "storage/")
	v.SetDefault("storage.bootstrap_timeout", "30s")
}

func setNATSDefaults(v *viper.Viper) {
	v.SetDefault("nats.stream_name", "MEDIA_EVENTS")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "media-pipeline")
	v.SetDefault("nats.ack_wait", "5m")
	v.SetDefault("nats.max_deliver", 5)
}

func (c *StorageConfig) validate() error {
	switch c.Driver {
	case "minio", "s3":
		if c.Bucket == "" {
			return errors.New("storage.bucket is required")
		}
	case "local":
		if c.LocalPath == "" {
			return errors.New("storage.local_path is required")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.Driver)
	}
	return nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			// Config file not found, use environment variables
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("MEDIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.allowed_origins",
		// Storage
		"storage.driver",
		"storage.bucket",
		"storage.endpoint",
		"storage.region",
		"storage.access_key",
		"storage.secret_key",
		"storage.use_ssl",
		"storage.public_base_url",
		"storage.local_path",
		"storage.bootstrap_timeout",
		// Transcoder
		"transcoder.ffmpeg_path",
		"transcoder.ffprobe_path",
		"transcoder.search_paths",
		"transcoder.timeout",
		"transcoder.max_concurrent",
		"transcoder.threads",
		"transcoder.scratch_dir",
		// Transform
		"transform.worker_concurrency",
		"transform.timeout",
		"transform.max_decoded_pixels",
		// Limits
		"limits.max_image_size",
		"limits.max_video_size",
		"limits.max_audio_size",
		"limits.max_file_size",
		// Cloudflare
		"cloudflare.api_token",
		"cloudflare.zone_id",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		// Retry
		"retry.initial_interval",
		"retry.max_interval",
		"retry.max_elapsed_time",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// CDNEnabled reports whether cache purging is configured
func (c *CloudflareConfig) CDNEnabled() bool {
	return c.APIToken != "" && c.ZoneID != ""
}

// Enabled reports whether event publishing is configured
func (c *NATSConfig) Enabled() bool {
	return c.URL != ""
}
