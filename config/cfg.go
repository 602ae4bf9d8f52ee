package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"nlmc/nlm"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ConverterConfig struct {
		TrimWhitespace            bool       `yaml:"trim_whitespace"`
		RemoveInnerWhitespace     bool       `yaml:"remove_inner_whitespace"`
		NormalizeUnicode          bool       `yaml:"normalize_unicode"`
		KeepUnstructuredCitations bool       `yaml:"keep_unstructured_citations"`
		Backend                   XMLBackend `yaml:"xml_backend" validate:"oneof=0 1"`
		Publisher                 string     `yaml:"publisher"`
	}

	OutputConfig struct {
		Format                OutputFmt `yaml:"format" validate:"oneof=0 1"`
		Indent                bool      `yaml:"indent"`
		FileNameTransliterate bool      `yaml:"file_name_transliterate"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Converter ConverterConfig `yaml:"converter"`
		Output    OutputConfig    `yaml:"output"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

// Options returns converter options described by configuration.
func (conf *ConverterConfig) Options() nlm.Options {
	return nlm.Options{
		TrimWhitespace:            conf.TrimWhitespace,
		RemoveInnerWhitespace:     conf.RemoveInnerWhitespace,
		NormalizeUnicode:          conf.NormalizeUnicode,
		KeepUnstructuredCitations: conf.KeepUnstructuredCitations,
		Publisher:                 conf.Publisher,
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
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
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
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
