package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the ledbetter host.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Animation AnimationConfig `yaml:"animation"`
	Layout    LayoutConfig    `yaml:"layout"`
	Player    PlayerConfig    `yaml:"player"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
	Outputs   OutputsConfig   `yaml:"outputs"`
}

// AnimationConfig selects the animation and its starting parameters.
type AnimationConfig struct {
	Name string `yaml:"name"`

	// Params overrides parameter defaults by field name. Values are
	// converted to the field's kind; integer fields reject fractions.
	Params map[string]float64 `yaml:"params"`
}

// LayoutConfig says where the pixel layout comes from.
type LayoutConfig struct {
	// File is a YAML layout file. It takes precedence over Name.
	File string `yaml:"file"`

	// Name is a layout stored in the database.
	Name string `yaml:"name"`

	// Store saves the layout loaded from File into the database under its
	// own name, replacing any stored layout of that name.
	Store bool `yaml:"store"`
}

// PlayerConfig contains frame loop settings.
type PlayerConfig struct {
	FPS int `yaml:"fps"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`

	// PanelDir serves the browser preview from disk instead of the
	// embedded copy. Empty uses the embedded files.
	PanelDir string `yaml:"panel_dir"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`

	// FrameEvery sends one frame in every N to websocket clients.
	FrameEvery int `yaml:"frame_every"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`

	// File, when set, receives logs instead of Output.
	File string `yaml:"file"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings. An empty secret leaves the API's
// mutating routes open.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// OutputsConfig contains the frame sinks.
type OutputsConfig struct {
	OPC        OPCConfig        `yaml:"opc"`
	Preview    PreviewConfig    `yaml:"preview"`
	MQTTFrames MQTTFramesConfig `yaml:"mqtt_frames"`
}

// OPCConfig contains Open Pixel Control output settings.
type OPCConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`

	// Strips maps each layout strip to a channel and pixel offset. Strips
	// without an entry go to channel 0 at consecutive offsets.
	Strips []OPCStripConfig `yaml:"strips"`

	// Server optionally runs the Fadecandy server as a child process.
	Server OPCServerConfig `yaml:"server"`
}

// OPCServerConfig contains settings for a managed fcserver.
type OPCServerConfig struct {
	Managed      bool     `yaml:"managed"`
	Binary       string   `yaml:"binary"`
	Args         []string `yaml:"args"`
	RestartDelay int      `yaml:"restart_delay"` // seconds
	MaxRestarts  int      `yaml:"max_restarts"`
}

// OPCStripConfig places one strip on the fadecandy.
type OPCStripConfig struct {
	Channel uint8 `yaml:"channel"`
	Offset  int   `yaml:"offset"`
}

// PreviewConfig contains terminal preview settings.
type PreviewConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MQTTFramesConfig contains MQTT frame publishing settings.
type MQTTFramesConfig struct {
	Enabled bool `yaml:"enabled"`

	// Every publishes one frame in every N.
	Every int `yaml:"every"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: LEDBETTER_SECTION_KEY
// For example: LEDBETTER_DATABASE_PATH, LEDBETTER_PLAYER_FPS
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Animation: AnimationConfig{
			Name: "blue",
		},
		Player: PlayerConfig{
			FPS: 60,
		},
		Database: DatabaseConfig{
			Path:        "./data/ledbetter.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "ledbetter",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
			FrameEvery:     2,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     500,
			FlushInterval: 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Outputs: OutputsConfig{
			OPC: OPCConfig{
				Address: "localhost:7890",
				Server: OPCServerConfig{
					Binary:       "fcserver",
					RestartDelay: 1,
				},
			},
			MQTTFrames: MQTTFramesConfig{
				Every: 10,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LEDBETTER_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	// Animation and layout
	if v := os.Getenv("LEDBETTER_ANIMATION"); v != "" {
		cfg.Animation.Name = v
	}
	if v := os.Getenv("LEDBETTER_LAYOUT_FILE"); v != "" {
		cfg.Layout.File = v
	}
	if v := os.Getenv("LEDBETTER_LAYOUT_NAME"); v != "" {
		cfg.Layout.Name = v
	}
	if v := os.Getenv("LEDBETTER_PLAYER_FPS"); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LEDBETTER_PLAYER_FPS: %w", err)
		}
		cfg.Player.FPS = fps
	}

	// Database
	if v := os.Getenv("LEDBETTER_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("LEDBETTER_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LEDBETTER_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LEDBETTER_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("LEDBETTER_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	// InfluxDB
	if v := os.Getenv("LEDBETTER_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Outputs
	if v := os.Getenv("LEDBETTER_OPC_ADDRESS"); v != "" {
		cfg.Outputs.OPC.Address = v
	}

	// Security - prefer the environment over the file for the JWT secret
	if v := os.Getenv("LEDBETTER_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}

	return nil
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Animation.Name == "" {
		errs = append(errs, "animation.name is required")
	}

	if c.Layout.File == "" && c.Layout.Name == "" {
		errs = append(errs, "layout.file or layout.name is required")
	}
	if c.Layout.Store && c.Layout.File == "" {
		errs = append(errs, "layout.store requires layout.file")
	}

	if c.Player.FPS < 1 || c.Player.FPS > 1000 {
		errs = append(errs, "player.fps must be between 1 and 1000")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.Outputs.MQTTFrames.Enabled && !c.MQTT.Enabled {
		errs = append(errs, "outputs.mqtt_frames requires mqtt.enabled")
	}
	if c.Outputs.MQTTFrames.Every < 1 {
		errs = append(errs, "outputs.mqtt_frames.every must be at least 1")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.WebSocket.FrameEvery < 1 {
		errs = append(errs, "websocket.frame_every must be at least 1")
	}
	if c.API.Enabled && (c.WebSocket.PingInterval < 1 || c.WebSocket.PongTimeout < 1) {
		errs = append(errs, "websocket.ping_interval and websocket.pong_timeout must be at least 1")
	}

	if c.Outputs.OPC.Enabled && c.Outputs.OPC.Address == "" {
		errs = append(errs, "outputs.opc.address is required when opc is enabled")
	}
	if c.Outputs.Preview.Enabled && c.Logging.File == "" {
		errs = append(errs, "outputs.preview requires logging.file")
	}
	if c.Outputs.OPC.Server.Managed && c.Outputs.OPC.Server.Binary == "" {
		errs = append(errs, "outputs.opc.server.binary is required when the server is managed")
	}
	if c.Outputs.OPC.Server.RestartDelay < 0 || c.Outputs.OPC.Server.MaxRestarts < 0 {
		errs = append(errs, "outputs.opc.server.restart_delay and max_restarts must not be negative")
	}
	for i, st := range c.Outputs.OPC.Strips {
		if st.Offset < 0 {
			errs = append(errs, fmt.Sprintf("outputs.opc.strips[%d].offset must not be negative", i))
		}
	}

	// JWT secret is optional; when set it must be long enough to sign with.
	const minJWTSecretLength = 32
	if s := c.Security.JWT.Secret; s != "" && len(s) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// FrameInterval returns the time between frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Player.FPS)
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
