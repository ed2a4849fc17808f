package entities

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// LookupMode selects how a page session reaches the registry.
type LookupMode string

const (
	// LookupDirect queries the registry from the page session itself.
	LookupDirect LookupMode = "direct"
	// LookupBackground routes lookups through the background message channel.
	LookupBackground LookupMode = "background"
)

const (
	DefaultRegistryURL   = "https://registry.npmjs.org"
	DefaultListenAddress = "127.0.0.1:7878"
	DefaultDebounce      = 500 * time.Millisecond

	stateDirName  = "npmdiffscan"
	stateFileName = "state.yaml"
)

// Settings is the top-level configuration for npmdiffscan.
type Settings struct {
	RegistryURL   string        `yaml:"registry_url"`
	Lookup        LookupMode    `yaml:"lookup"`
	BackgroundURL string        `yaml:"background_url"`
	ListenAddress string        `yaml:"listen_address"`
	Debounce      time.Duration `yaml:"debounce"`
	StatePath     string        `yaml:"state_path"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() *Settings {
	return &Settings{
		RegistryURL:   DefaultRegistryURL,
		Lookup:        LookupDirect,
		BackgroundURL: "http://" + DefaultListenAddress,
		ListenAddress: DefaultListenAddress,
		Debounce:      DefaultDebounce,
		StatePath:     defaultStatePath(),
	}
}

// NewSettings reads and parses a configuration file on top of the defaults,
// expanding ${ENV_VAR} references.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	settings := DefaultSettings()
	if unmarshalErr := yaml.Unmarshal(data, settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.RegistryURL = expandEnv(settings.RegistryURL)
	settings.BackgroundURL = expandEnv(settings.BackgroundURL)
	settings.StatePath = expandEnv(settings.StatePath)

	if validateErr := settings.validate(); validateErr != nil {
		return nil, validateErr
	}

	return settings, nil
}

// LoadSettings loads the config at path, or auto-detects one when path is
// empty. Defaults are returned when nothing is found.
func LoadSettings(path string) (*Settings, error) {
	if path != "" {
		return NewSettings(path)
	}

	found, err := FindConfigFile()
	if err != nil {
		logger.Debugf("No config file found, using defaults: %v", err)
		return DefaultSettings(), nil
	}

	logger.Debugf("Using config file: %s", found)
	return NewSettings(found)
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".npmdiffscan.yaml",
		".npmdiffscan.yml",
		"npmdiffscan.yaml",
		"npmdiffscan.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// expandEnv replaces ${VAR} references with their environment values.
func expandEnv(raw string) string {
	if raw == "" {
		return raw
	}

	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

// validate checks for required configuration values.
func (s *Settings) validate() error {
	if _, err := url.ParseRequestURI(s.RegistryURL); err != nil {
		return fmt.Errorf("registry_url %q is not a valid URL: %w", s.RegistryURL, err)
	}

	switch s.Lookup {
	case LookupDirect:
	case LookupBackground:
		if _, err := url.ParseRequestURI(s.BackgroundURL); err != nil {
			return fmt.Errorf("background_url %q is not a valid URL: %w", s.BackgroundURL, err)
		}
	default:
		return fmt.Errorf("lookup must be %q or %q, got %q", LookupDirect, LookupBackground, s.Lookup)
	}

	if s.Debounce <= 0 {
		return errors.New("debounce must be a positive duration")
	}
	if s.StatePath == "" {
		return errors.New("state_path is required")
	}

	return nil
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "." + stateDirName + "-" + stateFileName
	}
	return filepath.Join(dir, stateDirName, stateFileName)
}
