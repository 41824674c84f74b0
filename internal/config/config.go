// Package config provides Viper-based configuration loading for the castle simulation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Save backend identifiers accepted by SaveConfig.Backend.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DatabaseConfig holds PostgreSQL connection settings for the postgres save backend.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Enabled serves games over Telnet instead of stdin.
	Enabled bool `mapstructure:"enabled"`
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections. 0 disables it.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections. 0 disables it.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// DataConfig locates the static and dynamic content files.
type DataConfig struct {
	// MapFile is the binary room map (575-byte records).
	MapFile string `mapstructure:"map_file"`
	// OverlayFile is the YAML dynamic room overlay.
	OverlayFile string `mapstructure:"overlay_file"`
	// ItemsFile is the YAML item catalog.
	ItemsFile string `mapstructure:"items_file"`
	// EnemiesFile is the YAML enemy catalog.
	EnemiesFile string `mapstructure:"enemies_file"`
	// ScriptsDir holds Lua item hooks. Empty disables scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// ScriptInstructionLimit caps opcodes per hook call. 0 uses the scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// WorldConfig holds room table and starting position settings.
type WorldConfig struct {
	// RoomCount is the number of records in the map file. 0 derives it from the file size.
	RoomCount int `mapstructure:"room_count"`
	// StartRoom is the 0-indexed room the player starts in.
	StartRoom int `mapstructure:"start_room"`
	// PlayerX and PlayerY are the player's starting grid coordinates.
	PlayerX int `mapstructure:"player_x"`
	PlayerY int `mapstructure:"player_y"`
	// Debug grants the player the debug command capability.
	Debug bool `mapstructure:"debug"`
}

// PlayerConfig holds the player's combat settings.
type PlayerConfig struct {
	Health   int `mapstructure:"health"`
	Damage   int `mapstructure:"damage"`
	LogLines int `mapstructure:"log_lines"`
}

// SaveConfig selects the durable session save backend.
type SaveConfig struct {
	// Backend is one of "file", "sqlite", "postgres".
	Backend string `mapstructure:"backend"`
	// Path is the save file (file backend) or database file (sqlite backend).
	Path string `mapstructure:"path"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Data     DataConfig     `mapstructure:"data"`
	World    WorldConfig    `mapstructure:"world"`
	Player   PlayerConfig   `mapstructure:"player"`
	Save     SaveConfig     `mapstructure:"save"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateData(c.Data); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWorld(c.World); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePlayer(c.Player); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSave(c.Save); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Telnet.Enabled {
		if err := validateTelnet(c.Telnet); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Save.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateData(d DataConfig) error {
	var errs []string
	if d.MapFile == "" {
		errs = append(errs, "data.map_file must not be empty")
	}
	if d.OverlayFile == "" {
		errs = append(errs, "data.overlay_file must not be empty")
	}
	if d.ItemsFile == "" {
		errs = append(errs, "data.items_file must not be empty")
	}
	if d.EnemiesFile == "" {
		errs = append(errs, "data.enemies_file must not be empty")
	}
	if d.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("data.script_instruction_limit must be >= 0, got %d", d.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateWorld(w WorldConfig) error {
	var errs []string
	if w.RoomCount < 0 {
		errs = append(errs, fmt.Sprintf("world.room_count must be >= 0, got %d", w.RoomCount))
	}
	if w.StartRoom < 0 {
		errs = append(errs, fmt.Sprintf("world.start_room must be >= 0, got %d", w.StartRoom))
	}
	if w.RoomCount > 0 && w.StartRoom >= w.RoomCount {
		errs = append(errs, fmt.Sprintf("world.start_room %d out of range for %d rooms", w.StartRoom, w.RoomCount))
	}
	if w.PlayerX < 0 || w.PlayerX > 23 {
		errs = append(errs, fmt.Sprintf("world.player_x must be 0-23, got %d", w.PlayerX))
	}
	if w.PlayerY < 0 || w.PlayerY > 17 {
		errs = append(errs, fmt.Sprintf("world.player_y must be 0-17, got %d", w.PlayerY))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePlayer(p PlayerConfig) error {
	var errs []string
	if p.Health < 1 {
		errs = append(errs, fmt.Sprintf("player.health must be >= 1, got %d", p.Health))
	}
	if p.Damage < 0 {
		errs = append(errs, fmt.Sprintf("player.damage must be >= 0, got %d", p.Damage))
	}
	if p.LogLines < 1 {
		errs = append(errs, fmt.Sprintf("player.log_lines must be >= 1, got %d", p.LogLines))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSave(s SaveConfig) error {
	switch s.Backend {
	case BackendFile, BackendSQLite:
		if s.Path == "" {
			return fmt.Errorf("save.path must not be empty for backend %q", s.Backend)
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("save.backend must be one of [file, sqlite, postgres], got %q", s.Backend)
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 1 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 1-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, fmt.Sprintf("telnet.read_timeout must be >= 0, got %s", t.ReadTimeout))
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, fmt.Sprintf("telnet.write_timeout must be >= 0, got %s", t.WriteTimeout))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with CASTLE_ prefix
	v.SetEnvPrefix("CASTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("data.map_file", "data/castle.ran")
	v.SetDefault("data.overlay_file", "data/dynrooms.yaml")
	v.SetDefault("data.items_file", "data/items.yaml")
	v.SetDefault("data.enemies_file", "data/enemies.yaml")
	v.SetDefault("data.scripts_dir", "")
	v.SetDefault("data.script_instruction_limit", 0)

	v.SetDefault("world.room_count", 0)
	v.SetDefault("world.start_room", 0)
	v.SetDefault("world.player_x", 12)
	v.SetDefault("world.player_y", 9)
	v.SetDefault("world.debug", false)

	v.SetDefault("player.health", 10)
	v.SetDefault("player.damage", 10)
	v.SetDefault("player.log_lines", 2)

	v.SetDefault("save.backend", BackendFile)
	v.SetDefault("save.path", "savegame.yaml")

	v.SetDefault("telnet.enabled", false)
	v.SetDefault("telnet.host", "127.0.0.1")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "0s")
	v.SetDefault("telnet.write_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "castle")
	v.SetDefault("database.password", "castle")
	v.SetDefault("database.name", "castle")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
