package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/feichai0017/clinical-doc-processor/pkg/logger"
)

const (
	EngineTesseract = "tesseract"
	EngineTextract  = "textract"
	EngineNone      = "none"

	defaultConfigPath = "config.yaml"
)

var (
	once      sync.Once
	appConfig *Config
)

// Config 应用配置
type Config struct {
	Log        logger.Config    `yaml:"log"`
	OCR        OCRConfig        `yaml:"ocr"`
	Textract   TextractConfig   `yaml:"textract"`
	PDF        PDFConfig        `yaml:"pdf"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Validation ValidationConfig `yaml:"validation"`
	Batch      BatchConfig      `yaml:"batch"`
}

// PageSegSingleBlock is tesseract's "assume a single uniform block of text" mode.
const PageSegSingleBlock = 6

// OCRConfig selects and tunes the recognition engine.
type OCRConfig struct {
	Engine         string   `yaml:"engine"`
	Languages      []string `yaml:"languages"`
	DPI            float64  `yaml:"dpi"`
	PageSegMode    int      `yaml:"psm"` // 只支持 6 (single uniform block)
	TessdataPrefix string   `yaml:"tessdata"`
}

type PDFConfig struct {
	// PreferTextLayer uses the embedded text of a PDF when it has any.
	PreferTextLayer bool `yaml:"prefer_text_layer"`
	// MaxPages rejects longer PDFs; 0 disables the limit.
	MaxPages int `yaml:"max_pages"`
}

type ExtractionConfig struct {
	ExtendedFields bool `yaml:"extended_fields"`
}

type ValidationConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb"`
}

type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: logger.DefaultConfig(),
		OCR: OCRConfig{
			Engine:      EngineTesseract,
			Languages:   []string{"eng"},
			DPI:         300,
			PageSegMode: PageSegSingleBlock,
		},
		Textract: TextractConfig{
			MinConfidence: 80,
		},
		PDF:        PDFConfig{MaxPages: 0},
		Validation: ValidationConfig{MaxFileSizeMB: 16},
		Batch:      BatchConfig{MaxConcurrent: 4},
	}
}

// Load reads the yaml file at path (optional), then .env and the process environment.
// A missing file at path is not an error when path is the default location.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Get loads the configuration once, from CONFIG_PATH or ./config.yaml.
// It falls back to the defaults when loading fails.
func Get() *Config {
	once.Do(func() {
		cfg, err := Load(os.Getenv("CONFIG_PATH"))
		if err != nil {
			log.Printf("Warning: %v, falling back to default configuration", err)
			cfg = Default()
			cfg.applyEnv()
		}
		appConfig = cfg
	})
	return appConfig
}

func (c *Config) applyEnv() {
	envString("LOG_LEVEL", &c.Log.Level)
	envString("OCR_ENGINE", &c.OCR.Engine)
	if v := os.Getenv("OCR_LANGUAGE"); v != "" {
		c.OCR.Languages = strings.Split(v, "+")
	}
	envString("TESSDATA_PREFIX", &c.OCR.TessdataPrefix)
	envBool("PDF_PREFER_TEXT_LAYER", &c.PDF.PreferTextLayer)
	envInt("PDF_MAX_PAGES", &c.PDF.MaxPages)
	envBool("EXTRACT_EXTENDED_FIELDS", &c.Extraction.ExtendedFields)
	envInt("MAX_FILE_SIZE_MB", &c.Validation.MaxFileSizeMB)
	envInt("BATCH_MAX_CONCURRENT", &c.Batch.MaxConcurrent)
	c.Textract.applyEnv()
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	c.OCR.Engine = strings.ToLower(strings.TrimSpace(c.OCR.Engine))
	switch c.OCR.Engine {
	case EngineTesseract, EngineTextract, EngineNone:
	default:
		return fmt.Errorf("unknown ocr engine %q", c.OCR.Engine)
	}
	if c.OCR.DPI <= 0 {
		return fmt.Errorf("ocr dpi must be positive, got %v", c.OCR.DPI)
	}
	switch c.OCR.PageSegMode {
	case 0:
		c.OCR.PageSegMode = PageSegSingleBlock
	case PageSegSingleBlock:
	default:
		return fmt.Errorf("ocr psm must be %d (single uniform block), got %d", PageSegSingleBlock, c.OCR.PageSegMode)
	}
	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = []string{"eng"}
	}
	if c.Validation.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max_file_size_mb must be positive, got %d", c.Validation.MaxFileSizeMB)
	}
	if c.Batch.MaxConcurrent <= 0 {
		c.Batch.MaxConcurrent = 1
	}
	if c.PDF.MaxPages < 0 {
		return fmt.Errorf("pdf max_pages must not be negative, got %d", c.PDF.MaxPages)
	}
	if c.OCR.Engine == EngineTextract {
		return c.Textract.Validate()
	}
	return nil
}

// MaxFileSize returns the size limit in bytes.
func (c *Config) MaxFileSize() int64 {
	return int64(c.Validation.MaxFileSizeMB) * 1024 * 1024
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
