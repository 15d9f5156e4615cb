package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "catpost/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. CATPOST_LOGGING_LEVEL.
const EnvPrefix = "CATPOST"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Transform TransformConfig `yaml:"transform" envconfig:"TRANSFORM"`
	Formula   FormulaConfig   `yaml:"formula" envconfig:"FORMULA"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Workers   int             `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"eq=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TransformConfig names the species families used when a transform leaves
// the inlet or outlet argument out.
type TransformConfig struct {
	InletFraction  string `yaml:"xin" envconfig:"XIN" validate:"required"`
	OutletFraction string `yaml:"xout" envconfig:"XOUT" validate:"required"`
	InletRate      string `yaml:"rin" envconfig:"RIN" validate:"required"`
	OutletRate     string `yaml:"rout" envconfig:"ROUT" validate:"required"`
}

// Families maps argument names to default family prefixes.
func (t TransformConfig) Families() map[string]string {
	return map[string]string{
		"xin":  t.InletFraction,
		"xout": t.OutletFraction,
		"rin":  t.InletRate,
		"rout": t.OutletRate,
	}
}

// FormulaConfig points at an optional YAML file of extra species aliases.
type FormulaConfig struct {
	Aliases string `yaml:"aliases" envconfig:"ALIASES"`
}

// TelemetryConfig controls OpenTelemetry tracing and metrics
type TelemetryConfig struct {
	ServiceName   string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Tracing       bool    `yaml:"tracing" envconfig:"TRACING"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	Metrics       bool    `yaml:"metrics" envconfig:"METRICS"`
	MetricsFile   string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// OutputConfig contains defaults for saved tables
type OutputConfig struct {
	Dir    string `yaml:"dir" envconfig:"DIR" validate:"required"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=csv xlsx"`
	Sigma  bool   `yaml:"sigma" envconfig:"SIGMA"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (or the first file found in the usual locations when path is empty), then
// CATPOST_* environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays a YAML file on cfg; keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return apperrors.NewConfigError("failed to read config file", err).WithContext("path", filePath)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return apperrors.NewConfigError("failed to parse config file", err).WithContext("path", filePath)
	}
	return nil
}

var validate = validator.New()

// Validate checks every field constraint and reports all violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewConfigError("config validation failed", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return apperrors.NewConfigError("config validation failed: "+strings.Join(msgs, "; "), err)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"catpost.yaml",
		"config.yaml",
		"configs/catpost.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/catpost.log",
		},
		Transform: TransformConfig{
			InletFraction:  "xin",
			OutletFraction: "xout",
			InletRate:      "nin",
			OutletRate:     "nout",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "catpost",
			Tracing:       false,
			TraceExporter: "stdout",
			SampleRatio:   1.0,
			Metrics:       false,
		},
		Output: OutputConfig{
			Dir:    "out",
			Format: "csv",
			Sigma:  true,
		},
		Workers: 4,
	}
}
