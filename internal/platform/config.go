package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/aretw0/hockey/pkg/session"
)

const (
	// ConfigDirName is the per-user settings directory under the home directory.
	ConfigDirName = ".hockey-editor"
	// ConfigName is the settings file name without extension.
	ConfigName = "settings"
	// EnvPrefix prefixes environment overrides, e.g. HOCKEY_RECORDING_MODE.
	EnvPrefix = "HOCKEY"
)

// Setting keys.
const (
	KeyMode           = "recording.mode"
	KeyFixedDuration  = "recording.fixed_duration_sec"
	KeyPreRoll        = "recording.pre_roll_sec"
	KeyPostRoll       = "recording.post_roll_sec"
	KeyHistoryDepth   = "history.max_depth"
	KeyCoalesceMillis = "timeline.coalesce_ms"
	KeyMaxIncremental = "timeline.max_incremental"
	KeyAutosave       = "autosave.enabled"
	KeyAutosaveMins   = "autosave.interval_min"
	KeyRecoveryDir    = "autosave.recovery_dir"
	KeyWatchExternal  = "watch.external"
	KeyEventsFile     = "events.file"
	KeyRecent         = "recent"
)

// Config is the user settings file.
type Config struct {
	dir string

	mu sync.Mutex
	v  *viper.Viper
}

// DefaultConfigDir returns ~/.hockey-editor.
func DefaultConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName), nil
}

// LoadConfig reads dir/settings.yaml. A missing file yields the defaults.
// An empty dir means DefaultConfigDir.
func LoadConfig(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	dir, err := homedir.Expand(dir)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return &Config{dir: dir, v: v}, nil
}

func setDefaults(v *viper.Viper, dir string) {
	d := session.DefaultSettings()
	v.SetDefault(KeyMode, string(d.Mode))
	v.SetDefault(KeyFixedDuration, d.FixedDuration)
	v.SetDefault(KeyPreRoll, d.PreRoll)
	v.SetDefault(KeyPostRoll, d.PostRoll)
	v.SetDefault(KeyHistoryDepth, d.HistoryDepth)
	v.SetDefault(KeyCoalesceMillis, d.CoalesceDelay.Milliseconds())
	v.SetDefault(KeyMaxIncremental, d.MaxIncremental)
	v.SetDefault(KeyAutosave, false)
	v.SetDefault(KeyAutosaveMins, int(d.AutosaveInterval/time.Minute))
	v.SetDefault(KeyRecoveryDir, filepath.Join(dir, "recovery"))
	v.SetDefault(KeyWatchExternal, false)
	v.SetDefault(KeyEventsFile, filepath.Join(dir, "events.yaml"))
	v.SetDefault(KeyRecent, []string{})
}

// Dir returns the settings directory.
func (c *Config) Dir() string { return c.dir }

// Path returns the settings file path.
func (c *Config) Path() string { return filepath.Join(c.dir, ConfigName+".yaml") }

// Settings maps the file onto editor preferences.
func (c *Config) Settings() session.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.v
	return session.Settings{
		Mode:             session.RecordingMode(v.GetString(KeyMode)),
		FixedDuration:    v.GetFloat64(KeyFixedDuration),
		PreRoll:          v.GetFloat64(KeyPreRoll),
		PostRoll:         v.GetFloat64(KeyPostRoll),
		HistoryDepth:     v.GetInt(KeyHistoryDepth),
		CoalesceDelay:    time.Duration(v.GetInt(KeyCoalesceMillis)) * time.Millisecond,
		MaxIncremental:   v.GetInt(KeyMaxIncremental),
		Autosave:         v.GetBool(KeyAutosave),
		AutosaveInterval: time.Duration(v.GetInt(KeyAutosaveMins)) * time.Minute,
		RecoveryDir:      c.expand(v.GetString(KeyRecoveryDir)),
		WatchExternal:    v.GetBool(KeyWatchExternal),
	}
}

// SetSettings stores s. Call Save to persist.
func (c *Config) SetSettings(s session.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.v.Set(KeyMode, string(s.Mode))
	c.v.Set(KeyFixedDuration, s.FixedDuration)
	c.v.Set(KeyPreRoll, s.PreRoll)
	c.v.Set(KeyPostRoll, s.PostRoll)
	c.v.Set(KeyHistoryDepth, s.HistoryDepth)
	c.v.Set(KeyCoalesceMillis, s.CoalesceDelay.Milliseconds())
	c.v.Set(KeyMaxIncremental, s.MaxIncremental)
	c.v.Set(KeyAutosave, s.Autosave)
	c.v.Set(KeyAutosaveMins, int(s.AutosaveInterval/time.Minute))
	c.v.Set(KeyRecoveryDir, s.RecoveryDir)
	c.v.Set(KeyWatchExternal, s.WatchExternal)
}

// EventsFile returns the custom event types file.
func (c *Config) EventsFile() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expand(c.v.GetString(KeyEventsFile))
}

// Recent returns the recent projects list.
func (c *Config) Recent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v.GetStringSlice(KeyRecent)
}

// SetRecent replaces the recent projects list and persists the file.
func (c *Config) SetRecent(paths []string) error {
	c.mu.Lock()
	c.v.Set(KeyRecent, paths)
	c.mu.Unlock()
	return c.Save()
}

// Save writes the settings file, creating the directory if needed.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := c.v.WriteConfigAs(c.Path()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) expand(p string) string {
	if out, err := homedir.Expand(p); err == nil {
		return out
	}
	return p
}
