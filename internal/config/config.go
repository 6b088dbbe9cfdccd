// Package config loads settings for the OCR engine, the reflow heuristic
// and logging.
//
// Precedence, lowest first: DefaultConfig, the YAML file passed to Load,
// variables from a .env file, TESSWORDS_* environment variables, then any
// command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Engine names accepted in OCRConfig.Engine.
const (
	EngineGosseract = "gosseract"
	EngineCLI       = "cli"
)

// Config holds all settings.
type Config struct {
	OCR    OCRConfig    `yaml:"ocr"`
	Reflow ReflowConfig `yaml:"reflow"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// OCRConfig selects and tunes the Tesseract backend.
type OCRConfig struct {
	Engine         string            `yaml:"engine"` // gosseract or cli
	TesseractPath  string            `yaml:"tesseract_path"`
	TessdataPrefix string            `yaml:"tessdata_prefix"`
	Language       string            `yaml:"language"`
	PageSegMode    int               `yaml:"psm"`
	Variables      map[string]string `yaml:"variables"`
	Timeout        time.Duration     `yaml:"timeout"`
}

// ReflowConfig holds the line-grouping policy.
type ReflowConfig struct {
	LineFactor float64 `yaml:"line_factor"`
	Strict     bool    `yaml:"strict"`
}

// OutputConfig controls where hOCR documents are kept and how tables are
// printed.
type OutputConfig struct {
	// HOCRDir, when set, receives a copy of every hOCR document produced.
	HOCRDir string `yaml:"hocr_dir"`
	Format  string `yaml:"format"` // tsv or json
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Engine:        EngineGosseract,
			TesseractPath: "tesseract",
			Language:      "eng",
			PageSegMode:   3,
			Timeout:       2 * time.Minute,
		},
		Reflow: ReflowConfig{
			LineFactor: 2.0,
		},
		Output: OutputConfig{
			Format: "tsv",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the optional YAML file at path, then the optional .env file at
// envPath (".env" when empty), then environment overrides, and validates
// the result.
func Load(path, envPath string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := loadEnvFile(envPath); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TESSWORDS_ENGINE"); v != "" {
		cfg.OCR.Engine = v
	}
	if v := os.Getenv("TESSWORDS_TESSERACT_PATH"); v != "" {
		cfg.OCR.TesseractPath = v
	}
	if v := os.Getenv("TESSDATA_PREFIX"); v != "" {
		cfg.OCR.TessdataPrefix = v
	}
	if v := os.Getenv("TESSWORDS_LANG"); v != "" {
		cfg.OCR.Language = v
	}
	if v := os.Getenv("TESSWORDS_PSM"); v != "" {
		psm, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TESSWORDS_PSM: %w", err)
		}
		cfg.OCR.PageSegMode = psm
	}
	if v := os.Getenv("TESSWORDS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TESSWORDS_TIMEOUT: %w", err)
		}
		cfg.OCR.Timeout = d
	}
	if v := os.Getenv("TESSWORDS_LINE_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TESSWORDS_LINE_FACTOR: %w", err)
		}
		cfg.Reflow.LineFactor = f
	}
	if v := os.Getenv("TESSWORDS_STRICT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TESSWORDS_STRICT: %w", err)
		}
		cfg.Reflow.Strict = b
	}
	if v := os.Getenv("TESSWORDS_HOCR_DIR"); v != "" {
		cfg.Output.HOCRDir = v
	}
	if v := os.Getenv("TESSWORDS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TESSWORDS_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.OCR.Engine {
	case EngineGosseract, EngineCLI:
	default:
		return fmt.Errorf("invalid OCR engine: %q", c.OCR.Engine)
	}
	if c.OCR.Language == "" {
		return fmt.Errorf("OCR language must not be empty")
	}
	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		return fmt.Errorf("invalid page segmentation mode: %d", c.OCR.PageSegMode)
	}
	if c.OCR.Timeout < 0 {
		return fmt.Errorf("invalid OCR timeout: %s", c.OCR.Timeout)
	}
	if c.Reflow.LineFactor <= 0 {
		return fmt.Errorf("line factor must be positive: %g", c.Reflow.LineFactor)
	}
	switch strings.ToLower(c.Output.Format) {
	case "tsv", "json":
	default:
		return fmt.Errorf("invalid output format: %q", c.Output.Format)
	}
	return nil
}
