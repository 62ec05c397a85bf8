package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents ~/.config/soundextract/config.yaml. Every value is a
// default that an explicitly set flag overrides.
type Config struct {
	OutputDir   string `yaml:"output_dir"`
	Workers     *int   `yaml:"workers"`
	StreamedExt string `yaml:"streamed_ext"`

	// Vorbis tools
	WW2Ogg    string `yaml:"ww2ogg"`
	Revorb    string `yaml:"revorb"`
	Codebooks string `yaml:"codebooks"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "soundextract", "config.yaml")
}

// LoadConfig reads the config file at path. A missing or invalid file
// yields a zero Config.
func LoadConfig(path string) Config {
	if path == "" {
		return Config{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}

	return cfg
}

func (c Config) streamedExt(cmd *cli.Command) string {
	if c.StreamedExt != "" && !cmd.IsSet("streamed-ext") {
		return c.StreamedExt
	}

	return cmd.String("streamed-ext")
}

func (c Config) applyTools(cmd *cli.Command, tools *toolOptions) {
	if c.WW2Ogg != "" && !cmd.IsSet("ww2ogg") {
		tools.ww2ogg = c.WW2Ogg
	}

	if c.Revorb != "" && !cmd.IsSet("revorb") {
		tools.revorb = c.Revorb
	}

	if c.Codebooks != "" && !cmd.IsSet("codebooks") {
		tools.codebooks = c.Codebooks
	}
}

func (c Config) applyExport(cmd *cli.Command, outDir *string, workers *int) {
	if c.OutputDir != "" && !cmd.IsSet("out") {
		*outDir = c.OutputDir
	}

	if c.Workers != nil && !cmd.IsSet("workers") {
		*workers = *c.Workers
	}
}
