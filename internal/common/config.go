package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"`
	Server      ServerConfig     `toml:"server"`
	Inference   InferenceConfig  `toml:"inference"`
	OCR         OCRConfig        `toml:"ocr"`
	Prompts     PromptsConfig    `toml:"prompts"`
	Validation  ValidationConfig `toml:"validation"`
	Logging     LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

// InferenceConfig describes the remote inference endpoint used for
// structured validation of OCR text.
type InferenceConfig struct {
	Endpoint       string `toml:"endpoint" validate:"required,url"`
	Model          string `toml:"model" validate:"required"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gt=0"`
	MaxTokens      int    `toml:"max_tokens" validate:"gt=0"`
}

type OCRConfig struct {
	Language      string `toml:"language" validate:"required"`       // default OCR language code
	TesseractPath string `toml:"tesseract_path" validate:"required"` // engine binary, used by the readiness probe
	PageWorkers   int    `toml:"page_workers" validate:"gt=0"`       // bounded pool size for per-page extraction
}

type PromptsConfig struct {
	Dir string `toml:"dir"` // directory of prompt template overrides, empty = compiled defaults only
}

type ValidationConfig struct {
	ReviewThreshold float64 `toml:"review_threshold" validate:"gte=0,lte=1"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns the configuration defaults applied before any
// file or environment override.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Inference: InferenceConfig{
			Endpoint:       "http://llamastack.claims-demo.svc.cluster.local:8321",
			Model:          "llama-instruct-32-3b",
			TimeoutSeconds: 30,
			MaxTokens:      1024,
		},
		OCR: OCRConfig{
			Language:      "eng",
			TesseractPath: "tesseract",
			PageWorkers:   2,
		},
		Prompts: PromptsConfig{
			Dir: "",
		},
		Validation: ValidationConfig{
			ReviewThreshold: 0.7,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier ones; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CLAIMLENS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("CLAIMLENS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	// PORT is honored for container platforms that only set the generic name
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("CLAIMLENS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if endpoint := os.Getenv("LLAMASTACK_ENDPOINT"); endpoint != "" {
		config.Inference.Endpoint = endpoint
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		config.Inference.Model = model
	}
	if timeout := os.Getenv("CLAIMLENS_INFERENCE_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			config.Inference.TimeoutSeconds = t
		}
	}

	if lang := os.Getenv("CLAIMLENS_OCR_LANGUAGE"); lang != "" {
		config.OCR.Language = lang
	}
	if path := os.Getenv("CLAIMLENS_TESSERACT_PATH"); path != "" {
		config.OCR.TesseractPath = path
	}
	if workers := os.Getenv("CLAIMLENS_OCR_PAGE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil {
			config.OCR.PageWorkers = w
		}
	}

	if dir := os.Getenv("PROMPTS_DIR"); dir != "" {
		config.Prompts.Dir = dir
	}

	if level := os.Getenv("CLAIMLENS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("CLAIMLENS_LOG_OUTPUT"); output != "" {
		config.Logging.Output = strings.Split(output, ",")
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
