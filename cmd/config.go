package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/crowdfund"
	"github.com/pelletier/go-toml"
	log "github.com/sirupsen/logrus"
)

// Config is the content of the configuration file.
//
//	data_dir = "/var/lib/crowdfund"
//	currency = "EUR"
//	debug = false
//
//	[seed]
//	projects = "$.data.projects"
type Config struct {
	DataDir  string     `toml:"data_dir"`
	Currency string     `toml:"currency"`
	Debug    bool       `toml:"debug"`
	Seed     SeedConfig `toml:"seed"`
}

// SeedConfig overrides the jsonpath of the seed sections.
type SeedConfig struct {
	Categories string `toml:"categories"`
	Projects   string `toml:"projects"`
	Rewards    string `toml:"rewards"`
}

// seedPaths is the seed layout after configuration.
var seedPaths = crowdfund.DefaultSeedPaths

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration %q: %w", path, err)
	}
	return cfg, nil
}

// Configure applies the configuration file to the global flags defined in
// flags. Flags explicitly set on the command line win over the file values.
// It must be called after flags are parsed.
func Configure(flags *flag.FlagSet) error {
	set := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	path := *configFile
	if f := flags.Lookup("config"); f != nil {
		path = f.Value.String()
	}
	cfg, err := LoadConfig(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !set["config"]:
		log.WithField("config", path).Debug("no configuration file")
	case err != nil:
		return err
	default:
		values := map[string]string{
			"data-dir": cfg.DataDir,
			"currency": cfg.Currency,
		}
		if cfg.Debug {
			values["debug"] = "true"
		}
		for name, v := range values {
			if v == "" || set[name] {
				continue
			}
			if err := flags.Set(name, v); err != nil {
				return fmt.Errorf("invalid configuration value for %s: %w", name, err)
			}
		}
		if cfg.Seed.Categories != "" {
			seedPaths.Categories = cfg.Seed.Categories
		}
		if cfg.Seed.Projects != "" {
			seedPaths.Projects = cfg.Seed.Projects
		}
		if cfg.Seed.Rewards != "" {
			seedPaths.Rewards = cfg.Seed.Rewards
		}
	}

	if *Debug {
		log.SetLevel(log.DebugLevel)
	}
	return nil
}
