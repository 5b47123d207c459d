package config

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/YelzhanWeb/powerpulse/internal/domain"
)

type Config struct {
	Database DatabaseConfig        `yaml:"database"`
	RabbitMQ RabbitMQConfig        `yaml:"rabbitmq"`
	Storage  StorageConfig         `yaml:"storage"`
	Pages    map[string]PageConfig `yaml:"pages"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Enabled is false when no broker host is configured
func (c RabbitMQConfig) Enabled() bool {
	return c.Host != ""
}

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// PageConfig is one deployment of the configurator page
type PageConfig struct {
	Title       string             `yaml:"title"`
	Volumes     []PriceEntry       `yaml:"volumes"`
	Containers  []PriceEntry       `yaml:"containers"`
	Shipping    float64            `yaml:"shipping"`
	Flavors     []string           `yaml:"flavors"`
	Restriction *RestrictionConfig `yaml:"restriction"`
	Suggestions SuggestionConfig   `yaml:"suggestions"`
}

type PriceEntry struct {
	Label     string  `yaml:"label"`
	Surcharge float64 `yaml:"surcharge"`
}

type RestrictionConfig struct {
	Container string   `yaml:"container"`
	Volumes   []string `yaml:"volumes"`
	Notice    string   `yaml:"notice"`
}

const (
	SuggestionsOff    = ""
	SuggestionsFixed  = "fixed"
	SuggestionsRandom = "random"
)

type SuggestionConfig struct {
	Mode   string     `yaml:"mode"`
	Combos [][]string `yaml:"combos"`
	Count  int        `yaml:"count"`
	Size   int        `yaml:"size"`
}

// Validate checks the suggestion block against the page's flavor list
func (c SuggestionConfig) Validate(flavors []string) error {
	switch c.Mode {
	case SuggestionsOff:
		return nil

	case SuggestionsFixed:
		if len(c.Combos) == 0 {
			return fmt.Errorf("fixed suggestions need at least one combo")
		}
		for i, combo := range c.Combos {
			if len(combo) == 0 {
				return fmt.Errorf("combo %d is empty", i)
			}
			for _, f := range combo {
				if !slices.Contains(flavors, f) {
					return fmt.Errorf("combo %d: %w: %q", i, domain.ErrUnknownFlavor, f)
				}
			}
		}
		return nil

	case SuggestionsRandom:
		if c.Count <= 0 || c.Size <= 0 {
			return fmt.Errorf("random suggestions need a positive count and size, got %d and %d", c.Count, c.Size)
		}
		if len(flavors) == 0 {
			return fmt.Errorf("random suggestions need a flavor list")
		}
		return nil

	default:
		return fmt.Errorf("unknown suggestions mode %q", c.Mode)
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

// Parse decodes YAML and fills defaults, without looking at the environment
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageMemory
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	switch cfg.Storage.Driver {
	case StorageMemory, StoragePostgres:
	case StorageSQLite:
		if cfg.Storage.Path == "" {
			cfg.Storage.Path = "powerpulse.db"
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	return &cfg, nil
}

// applyEnv lets DB_*, RABBITMQ_* and STORAGE_* variables override the file
func applyEnv(cfg *Config) {
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Database, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")

	setString(&cfg.RabbitMQ.Host, "RABBITMQ_HOST")
	setInt(&cfg.RabbitMQ.Port, "RABBITMQ_PORT")
	setString(&cfg.RabbitMQ.User, "RABBITMQ_USER")
	setString(&cfg.RabbitMQ.Password, "RABBITMQ_PASSWORD")

	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setString(&cfg.Storage.Path, "STORAGE_PATH")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) PageNames() []string {
	names := make([]string, 0, len(c.Pages))
	for name := range c.Pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog converts the named page into a validated domain catalog
func (c *Config) Catalog(name string) (domain.Catalog, error) {
	page, ok := c.Pages[name]
	if !ok {
		return domain.Catalog{}, fmt.Errorf("page %q not configured (have %v)", name, c.PageNames())
	}

	catalog := domain.Catalog{
		Name:    name,
		Title:   page.Title,
		Flavors: page.Flavors,
		Rule:    domain.DefaultPackagingRule,
		Table: domain.PriceTable{
			Shipping: decimal.NewFromFloat(page.Shipping),
		},
	}

	for _, v := range page.Volumes {
		catalog.Table.Volumes = append(catalog.Table.Volumes, domain.Option[domain.Volume]{
			Label:     domain.Volume(v.Label),
			Surcharge: decimal.NewFromFloat(v.Surcharge),
		})
	}
	for _, ct := range page.Containers {
		catalog.Table.Containers = append(catalog.Table.Containers, domain.Option[domain.Container]{
			Label:     domain.Container(ct.Label),
			Surcharge: decimal.NewFromFloat(ct.Surcharge),
		})
	}

	if r := page.Restriction; r != nil {
		rule := domain.PackagingRule{
			Container: domain.Container(r.Container),
			Notice:    r.Notice,
		}
		for _, v := range r.Volumes {
			rule.Forbidden = append(rule.Forbidden, domain.Volume(v))
		}
		catalog.Rule = rule
	} else if _, ok := catalog.Table.ContainerSurcharge(domain.ContainerCan); !ok {
		// no cans on this page, nothing to restrict
		catalog.Rule = domain.PackagingRule{}
	}

	if err := catalog.Validate(); err != nil {
		return domain.Catalog{}, err
	}
	if err := page.Suggestions.Validate(page.Flavors); err != nil {
		return domain.Catalog{}, fmt.Errorf("%w: page %s suggestions: %w", domain.ErrInvalidCatalog, name, err)
	}
	return catalog, nil
}
