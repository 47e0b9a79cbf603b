package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"
	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"adaptive/adaptive"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	AdaptiveConfig struct {
		BaseDpr       float64 `yaml:"base_dpr" validate:"gt=0"`
		RemUnit       float64 `yaml:"rem_unit" validate:"gt=0"`
		RemPrecision  int     `yaml:"rem_precision" validate:"gte=0,lte=15"`
		HairlineClass string  `yaml:"hairline_class" validate:"required,excludesall= .0x2C"`
		AutoRem       bool    `yaml:"auto_rem"`
	}

	ProcessingConfig struct {
		Pattern               string        `yaml:"pattern" validate:"required"`
		FileNameTransliterate bool          `yaml:"file_name_transliterate"`
		WatchDelay            time.Duration `yaml:"watch_delay" validate:"gte=0"`
		OutputNameTemplate    string        `yaml:"output_name_template"`
	}

	Config struct {
		Version    int              `yaml:"version" validate:"eq=1"`
		Adaptive   AdaptiveConfig   `yaml:"adaptive"`
		Processing ProcessingConfig `yaml:"processing"`
		Logging    LoggingConfig    `yaml:"logging"`
		Reporting  ReporterConfig   `yaml:"reporting"`
	}
)

// Options converts configuration section to compiler options.
func (conf *AdaptiveConfig) Options() adaptive.Options {
	return adaptive.Options{
		BaseDpr:       conf.BaseDpr,
		RemUnit:       conf.RemUnit,
		RemPrecision:  conf.RemPrecision,
		HairlineClass: conf.HairlineClass,
		AutoRem:       conf.AutoRem,
	}
}

type TemplateFieldName string

// NOTE: must match yaml field names above, these are expanded later or are
// not templates at all
const (
	PatternFieldName            TemplateFieldName = "pattern"
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(PatternFieldName)),
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// checkConfig performs validations tags cannot express.
func checkConfig(sl validator.StructLevel) {
	cfg, ok := sl.Current().Interface().(Config)
	if !ok {
		return
	}
	if _, err := regexp.Compile(cfg.Processing.Pattern); err != nil {
		sl.ReportError(cfg.Processing.Pattern, "Processing.Pattern", "Pattern", "regexp", err.Error())
	}
	if len(cfg.Processing.OutputNameTemplate) > 0 {
		if _, err := template.New(string(OutputNameTemplateFieldName)).Funcs(sprig.FuncMap()).Parse(cfg.Processing.OutputNameTemplate); err != nil {
			sl.ReportError(cfg.Processing.OutputNameTemplate, "Processing.OutputNameTemplate", "OutputNameTemplate", "template", err.Error())
		}
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkConfig)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
