package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     Server     `mapstructure:"server"`
	Upload     Upload     `mapstructure:"upload"`
	OCR        OCR        `mapstructure:"ocr"`
	Detector   Detector   `mapstructure:"detector"`
	Translator Translator `mapstructure:"translator"`
	Postgres   Postgres   `mapstructure:"postgres"`
	RabbitMQ   RabbitMQ   `mapstructure:"rabbitmq"`
	Minio      Minio      `mapstructure:"minio"`
	Email      Email      `mapstructure:"email"`
}

type Server struct {
	Port  string `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
}

type Upload struct {
	Dir       string `mapstructure:"dir"`
	Filename  string `mapstructure:"filename"` //every request overwrites this file
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

type OCR struct {
	Engine         string   `mapstructure:"engine"` //tesseract | ollama
	Languages      []string `mapstructure:"languages"`
	TessdataPrefix string   `mapstructure:"tessdata_prefix"`
	Preprocess     bool     `mapstructure:"preprocess"`
	MinWidth       int      `mapstructure:"min_width"`
	Ollama         Ollama   `mapstructure:"ollama"`
}

type Ollama struct {
	URL            string `mapstructure:"url"`
	Model          string `mapstructure:"model"`
	MaxDim         int    `mapstructure:"max_dim"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type Detector struct {
	RequireReliable bool `mapstructure:"require_reliable"`
}

type Translator struct {
	Provider       string `mapstructure:"provider"` //google | libretranslate
	APIKey         string `mapstructure:"api_key"`
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type Postgres struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Database   string `mapstructure:"database"`
	AutoCreate bool   `mapstructure:"autocreate"`
}

type RabbitMQ struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Queue    string `mapstructure:"queue"`
}

type Minio struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Secure    bool   `mapstructure:"secure"`
}

type Email struct {
	Enabled  bool   `mapstructure:"enabled"`
	APIKey   string `mapstructure:"api_key"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":5000")
	v.SetDefault("server.debug", false)

	v.SetDefault("upload.dir", "static/uploads/")
	v.SetDefault("upload.filename", "uploaded_image.jpg")
	v.SetDefault("upload.max_size_mb", 10)

	v.SetDefault("ocr.engine", "tesseract")
	v.SetDefault("ocr.languages", []string{"en", "fr", "de", "es", "it", "pt", "ja", "ko", "ch_sim"})
	v.SetDefault("ocr.tessdata_prefix", "")
	v.SetDefault("ocr.preprocess", true)
	v.SetDefault("ocr.min_width", 1000)
	v.SetDefault("ocr.ollama.url", "http://localhost:11434")
	v.SetDefault("ocr.ollama.model", "llava")
	v.SetDefault("ocr.ollama.max_dim", 1600)
	v.SetDefault("ocr.ollama.timeout_seconds", 300)

	v.SetDefault("detector.require_reliable", false)

	v.SetDefault("translator.provider", "google")
	v.SetDefault("translator.api_key", "")
	v.SetDefault("translator.url", "")
	v.SetDefault("translator.timeout_seconds", 30)

	//every key needs a default, AutomaticEnv only reaches keys viper knows
	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.host", "")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.username", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.database", "")
	v.SetDefault("postgres.autocreate", true)

	v.SetDefault("rabbitmq.enabled", false)
	v.SetDefault("rabbitmq.host", "")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.username", "")
	v.SetDefault("rabbitmq.password", "")
	v.SetDefault("rabbitmq.queue", "translation_results")

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "translator-uploads")
	v.SetDefault("minio.secure", false)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.api_key", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.from_name", "ImageTranslator")
}

// InitConfig reads the yaml file, applies defaults and IMAGETRANSLATOR_*
// environment overrides (server.port -> IMAGETRANSLATOR_SERVER_PORT).
// An empty filename uses defaults and environment only.
func InitConfig(filename string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("imagetranslator")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		v.SetConfigFile(filename)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.OCR.Engine {
	case "tesseract":
	case "ollama":
		if c.OCR.Ollama.URL == "" || c.OCR.Ollama.Model == "" {
			return fmt.Errorf("ocr.ollama.url and ocr.ollama.model are required for the ollama engine")
		}
	default:
		return fmt.Errorf("ocr.engine must be tesseract or ollama, got %q", c.OCR.Engine)
	}
	switch c.Translator.Provider {
	case "google":
	case "libretranslate":
		if c.Translator.URL == "" {
			return fmt.Errorf("translator.url is required for libretranslate")
		}
	default:
		return fmt.Errorf("translator.provider must be google or libretranslate, got %q", c.Translator.Provider)
	}
	if c.Upload.Dir == "" || c.Upload.Filename == "" {
		return fmt.Errorf("upload.dir and upload.filename cannot be empty")
	}
	if c.Upload.MaxSizeMB < 1 {
		return fmt.Errorf("upload.max_size_mb must be positive")
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.Bucket == "") {
		return fmt.Errorf("minio.endpoint and minio.bucket are required when minio is enabled")
	}
	if c.Email.Enabled && (c.Email.APIKey == "" || c.Email.From == "") {
		return fmt.Errorf("email.api_key and email.from are required when email is enabled")
	}
	if c.Postgres.Enabled && c.Postgres.Host == "" {
		return fmt.Errorf("postgres.host is required when postgres is enabled")
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.Host == "" {
		return fmt.Errorf("rabbitmq.host is required when rabbitmq is enabled")
	}
	return nil
}
