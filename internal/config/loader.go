package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".tpaudit.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Duration wraps time.Duration so YAML values like "90s" or "2m" decode
// with time.ParseDuration instead of failing as integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// File is the YAML shape of the configuration file. All fields are
// optional; zero values leave the corresponding Config default untouched.
type File struct {
	// TemplateID is the Drive file ID of the template spreadsheet.
	TemplateID string `yaml:"template_id"`

	// Range is the destination range in A1 notation.
	Range string `yaml:"range"`

	// CredentialsFile is the path to the OAuth client descriptor.
	CredentialsFile string `yaml:"credentials_file"`

	// TokenFile is the path of the token cache.
	TokenFile string `yaml:"token_file"`

	// ChromePath overrides the browser executable.
	ChromePath string `yaml:"chrome_path"`

	// Headless controls headless mode. Pointer so that an absent key is
	// distinguishable from an explicit false.
	Headless *bool `yaml:"headless"`

	// AuditTimeout bounds the browser session, e.g. "90s".
	AuditTimeout Duration `yaml:"audit_timeout"`

	// SettleDelay is the post-load collection window, e.g. "10s".
	SettleDelay Duration `yaml:"settle_delay"`
}

// LoadConfigFile loads configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this based on whether the path was explicitly specified.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply copies the file's non-zero values onto the Config. Flag handling
// in the command layer runs after this, so flags win over the file.
func (f *File) Apply(cfg *Config) {
	if f.TemplateID != "" {
		cfg.TemplateID = f.TemplateID
	}
	if f.Range != "" {
		cfg.Range = f.Range
	}
	if f.CredentialsFile != "" {
		cfg.CredentialsFile = f.CredentialsFile
	}
	if f.TokenFile != "" {
		cfg.TokenFile = f.TokenFile
	}
	if f.ChromePath != "" {
		cfg.ChromePath = f.ChromePath
	}
	if f.Headless != nil {
		cfg.Headless = *f.Headless
	}
	if f.AuditTimeout > 0 {
		cfg.AuditTimeout = time.Duration(f.AuditTimeout)
	}
	if f.SettleDelay > 0 {
		cfg.SettleDelay = time.Duration(f.SettleDelay)
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. .tpaudit.yaml in the current directory
//  3. config.yaml in the XDG config directory (~/.config/tpaudit)
//  4. .tpaudit.yaml in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
