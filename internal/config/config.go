package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig           `mapstructure:"server"`
	Database DatabaseConfig         `mapstructure:"database"`
	Layout   LayoutConfig           `mapstructure:"layout"`
	Catalog  CatalogConfig          `mapstructure:"catalog"`
	Costs    []types.CostMultiplier `mapstructure:"costs"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver         string `mapstructure:"driver"` // postgres, memory
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxConnections int    `mapstructure:"max_connections"`
	EnsureSchema   bool   `mapstructure:"ensure_schema"`
}

// LayoutConfig holds the physical spacing rules in feet.
type LayoutConfig struct {
	WalkwayWidth   float64 `mapstructure:"walkway_width"`
	TransformerGap float64 `mapstructure:"transformer_gap"`
	StorageGap     float64 `mapstructure:"storage_gap"`
	MaxDeviceWidth float64 `mapstructure:"max_device_width"`
	MaxSystemWidth float64 `mapstructure:"max_system_width"`
	OuterOffset    float64 `mapstructure:"outer_offset"`
	RowPitch       float64 `mapstructure:"row_pitch"`
	MinBufferSide  float64 `mapstructure:"min_buffer_side"`
}

type CatalogConfig struct {
	SearchPaths []string `mapstructure:"search_paths"`
}

// DefaultLayout returns the spacing rules used when nothing is configured.
func DefaultLayout() LayoutConfig {
	return LayoutConfig{
		WalkwayWidth:   10,
		TransformerGap: 5,
		StorageGap:     2,
		MaxDeviceWidth: 10,
		MaxSystemWidth: 100,
		OuterOffset:    10,
		RowPitch:       20,
		MinBufferSide:  30,
	}
}

// DefaultCosts returns the soft-cost multipliers applied when the store has none.
func DefaultCosts() []types.CostMultiplier {
	return []types.CostMultiplier{
		{Name: "installation", Display: "Installation", Sort: 0, MultiplierType: types.MultiplierPercentOfHardware, Multiplier: 0.22},
		{Name: "permitting", Display: "Permitting", Sort: 1, MultiplierType: types.MultiplierCostPerKWh, Multiplier: 0.5},
		{Name: "engineering", Display: "Engineering", Sort: 2, MultiplierType: types.MultiplierPercentOfHardware, Multiplier: 0.05},
		{Name: "development", Display: "Development", Sort: 3, MultiplierType: types.MultiplierPercentOfHardware, Multiplier: 0.10},
	}
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	// Environment variables override the file, e.g. OSP_DATABASE_PASSWORD
	v.SetEnvPrefix("OSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return unmarshal(v)
}

// Default returns a configuration built from defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := unmarshal(v)
	if err != nil {
		// defaults are static, this only fails on a programming error
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 5000)
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "siteplanner")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.ensure_schema", true)

	d := DefaultLayout()
	v.SetDefault("layout.walkway_width", d.WalkwayWidth)
	v.SetDefault("layout.transformer_gap", d.TransformerGap)
	v.SetDefault("layout.storage_gap", d.StorageGap)
	v.SetDefault("layout.max_device_width", d.MaxDeviceWidth)
	v.SetDefault("layout.max_system_width", d.MaxSystemWidth)
	v.SetDefault("layout.outer_offset", d.OuterOffset)
	v.SetDefault("layout.row_pitch", d.RowPitch)
	v.SetDefault("layout.min_buffer_side", d.MinBufferSide)

	v.SetDefault("catalog.search_paths", []string{})
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.Costs) == 0 {
		config.Costs = DefaultCosts()
	}

	if err := config.Layout.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects spacing rules that would leave no room for a single row.
func (l LayoutConfig) Validate() error {
	if l.MaxDeviceWidth <= 0 || l.WalkwayWidth < 0 {
		return fmt.Errorf("invalid layout config: max_device_width must be positive and walkway_width non-negative")
	}
	if l.MaxSystemWidth < l.MaxDeviceWidth+l.WalkwayWidth {
		return fmt.Errorf("invalid layout config: max_system_width %.2f allows no rows", l.MaxSystemWidth)
	}
	if l.RowPitch <= 0 {
		return fmt.Errorf("invalid layout config: row_pitch must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode)
}
