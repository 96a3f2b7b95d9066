package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the upload UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the upload UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA name of the institutional timezone every
	// class meeting is localized into (e.g. "America/Vancouver"). The
	// export carries no per-row timezone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// CalendarName becomes X-WR-CALNAME in the generated file.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// SheetName is the worksheet holding the course table. If the sheet
	// does not exist the reader falls back to the first sheet.
	SheetName string `yaml:"sheet_name" json:"sheet_name"`

	// HeaderRow / FirstDataRow are 1-based row numbers of the column
	// header row and the first course row.
	HeaderRow    int `yaml:"header_row" json:"header_row"`
	FirstDataRow int `yaml:"first_data_row" json:"first_data_row"`

	// WatchCron is a cron-style schedule (e.g. "*/15 * * * *") used by
	// watch mode to re-convert InputPath into OutputPath.
	WatchCron string `yaml:"watch" json:"watch"`

	// InputPath / OutputPath are the fixed paths used by watch mode.
	InputPath  string `yaml:"input_path" json:"input_path"`
	OutputPath string `yaml:"output_path" json:"output_path"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Timezone:     "America/Vancouver",
		CalendarName: "Course Schedule",
		SheetName:    "View Courses for Student",
		HeaderRow:    3,
		FirstDataRow: 4,
		WatchCron:    "*/15 * * * *",
		OutputPath:   "courses.ics",
		BasicAuth:    nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/Vancouver"
	}
	if c.CalendarName == "" {
		c.CalendarName = "Course Schedule"
	}
	if c.SheetName == "" {
		c.SheetName = "View Courses for Student"
	}
	if c.HeaderRow <= 0 {
		c.HeaderRow = 3
	}
	if c.FirstDataRow <= c.HeaderRow {
		c.FirstDataRow = c.HeaderRow + 1
	}
	if c.WatchCron == "" {
		c.WatchCron = "*/15 * * * *"
	}
	if c.OutputPath == "" {
		c.OutputPath = "courses.ics"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".courseical-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
