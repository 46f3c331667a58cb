package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Import   ImportConfig   `yaml:"import"`
	Backup   BackupConfig   `yaml:"backup"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type DatabaseConfig struct {
	Name     string `yaml:"name"`     // name of a freshly created database
	Path     string `yaml:"path"`     // snapshot file loaded at start and saved on exit
	Format   string `yaml:"format"`   // json | sqlite; guessed from Path when empty
	Autosave bool   `yaml:"autosave"` // flush after every mutating command
}

type LoggingConfig struct {
	Level     string `yaml:"level"`      // debug | info | warn | error
	SeqURL    string `yaml:"seq_url"`    // optional Seq server, e.g. http://localhost:5341
	AddSource bool   `yaml:"add_source"` // include file:line in log records
}

type ImportConfig struct {
	SampleRows int    `yaml:"sample_rows"` // rows inspected for type inference
	Delimiter  string `yaml:"delimiter"`   // single character, default ","
}

type BackupConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron expression or @every descriptor
	Dir      string `yaml:"dir"`
	Format   string `yaml:"format"`
}

// TracingConfig turns mutation spans on. Finished spans are written to the
// process logger: at debug level, or warn when the mutation failed.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"` // fraction of mutations traced, (0, 1]
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Name:     "records",
			Path:     "data/records.json",
			Autosave: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Import: ImportConfig{
			SampleRows: 10,
			Delimiter:  ",",
		},
		Backup: BackupConfig{
			Enabled:  false,
			Schedule: "@every 1h",
			Dir:      "backups",
			Format:   "json",
		},
		Tracing: TracingConfig{
			ServiceName: "recordstore",
			SampleRatio: 1,
		},
	}
}

// Load reads configPath over the defaults. With an empty path the usual
// locations are tried and a missing file just means defaults.
func Load(configPath string) (*Config, error) {
	cfg := defaults()

	if configPath == "" {
		for _, p := range []string{"configs/recordstore.yaml", "recordstore.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, err
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		applyDefaults(cfg)
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Name == "" {
		cfg.Database.Name = "records"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Import.SampleRows <= 0 {
		cfg.Import.SampleRows = 10
	}
	if len([]rune(cfg.Import.Delimiter)) != 1 {
		cfg.Import.Delimiter = ","
	}
	if cfg.Backup.Schedule == "" {
		cfg.Backup.Schedule = "@every 1h"
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = "backups"
	}
	if cfg.Backup.Format == "" {
		cfg.Backup.Format = "json"
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "recordstore"
	}
	if cfg.Tracing.SampleRatio <= 0 || cfg.Tracing.SampleRatio > 1 {
		cfg.Tracing.SampleRatio = 1
	}
}

// DelimiterRune returns the import delimiter as a rune.
func (c ImportConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}
