package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/vecdash/internal/domain"
)

// Provider types understood by the embedding layer.
const (
	ProviderTypeOpenAI = "openai"
	ProviderTypeOllama = "ollama"
)

// Dashboard layouts.
const (
	LayoutTabs   = "tabs"
	LayoutSingle = "single"
)

// maxNumCandidates is the Atlas ceiling for $vectorSearch numCandidates.
const maxNumCandidates = 10000

// Config holds the vecdash configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
// Keys guard /api/* only; the HTML dashboard stays open.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds document store connection and layout settings.
type DatabaseConfig struct {
	URI                  string      `yaml:"uri"`
	Name                 string      `yaml:"name"`
	EmbeddingsCollection string      `yaml:"embeddings_collection"`
	InvestorsCollection  string      `yaml:"investors_collection"`
	VectorIndex          IndexConfig `yaml:"vector_index"`
	EnsureIndex          bool        `yaml:"ensure_index"`
	ReadinessTimeout     int         `yaml:"readiness_timeout_sec"`
}

// IndexConfig describes the Atlas vector search index.
type IndexConfig struct {
	Name       string `yaml:"name"`
	Path       string `yaml:"path"`
	Dimensions int    `yaml:"dimensions"`
	Similarity string `yaml:"similarity"` // cosine, euclidean, dotProduct
}

// SearchConfig holds vector query sizing.
type SearchConfig struct {
	NumCandidates  int `yaml:"num_candidates"`
	Limit          int `yaml:"limit"`
	MaxQueryLength int `yaml:"max_query_length"`
}

// EmbeddingConfig selects the provider and model used to encode prompts.
type EmbeddingConfig struct {
	Provider         string                    `yaml:"provider"`
	Model            string                    `yaml:"model"`
	Dimensions       int                       `yaml:"dimensions"`
	SendDimensions   bool                      `yaml:"send_dimensions"`
	QueryInstruction string                    `yaml:"query_instruction"`
	Providers        map[string]ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds embedding provider settings.
type ProviderConfig struct {
	Type    string `yaml:"type"` // openai (any compatible API) or ollama
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// CacheConfig holds the Redis/Valkey embedding cache settings.
type CacheConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	TTLSec    int      `yaml:"ttl_sec"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// DashboardConfig holds page rendering settings.
type DashboardConfig struct {
	Title  string `yaml:"title"`
	Layout string `yaml:"layout"` // tabs or single
}

// SelectedProvider returns the provider chosen by embedding.provider.
func (c *Config) SelectedProvider() (ProviderConfig, bool) {
	p, ok := c.Embedding.Providers[c.Embedding.Provider]
	return p, ok
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	c.applyDatabaseDefaults()

	if c.Search.NumCandidates <= 0 {
		c.Search.NumCandidates = maxNumCandidates
	}
	if c.Search.Limit <= 0 {
		c.Search.Limit = 200
	}
	if c.Search.MaxQueryLength <= 0 {
		c.Search.MaxQueryLength = 4096
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderTypeOllama
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = domain.DefaultVectorConfig().Model
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = c.Database.VectorIndex.Dimensions
	}
	if c.Embedding.Providers == nil {
		c.Embedding.Providers = map[string]ProviderConfig{}
	}
	if _, ok := c.Embedding.Providers[c.Embedding.Provider]; !ok && c.Embedding.Provider == ProviderTypeOllama {
		c.Embedding.Providers[ProviderTypeOllama] = ProviderConfig{}
	}
	for name, p := range c.Embedding.Providers {
		if p.Type == "" {
			p.Type = ProviderTypeOpenAI
			if name == ProviderTypeOllama {
				p.Type = ProviderTypeOllama
			}
			c.Embedding.Providers[name] = p
		}
	}

	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "vecdash:emb_cache:" + c.Embedding.Model + ":"
	}

	if c.Dashboard.Title == "" {
		c.Dashboard.Title = "Vector Search Dashboard"
	}
	if c.Dashboard.Layout == "" {
		c.Dashboard.Layout = LayoutTabs
	}
}

func (c *Config) applyDatabaseDefaults() {
	d := &c.Database
	if d.Name == "" {
		d.Name = "proprietary-database-investor"
	}
	if d.EmbeddingsCollection == "" {
		d.EmbeddingsCollection = "company_embeddings"
	}
	if d.InvestorsCollection == "" {
		d.InvestorsCollection = "data_source_1"
	}
	if d.VectorIndex.Name == "" {
		d.VectorIndex.Name = "company-description"
	}
	if d.VectorIndex.Path == "" {
		d.VectorIndex.Path = "companyDescription_embedding"
	}
	vec := domain.DefaultVectorConfig()
	if d.VectorIndex.Dimensions <= 0 {
		d.VectorIndex.Dimensions = vec.Dimensions
	}
	if d.VectorIndex.Similarity == "" {
		d.VectorIndex.Similarity = vec.Similarity
	}
	if d.ReadinessTimeout <= 0 {
		d.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.URI == "" {
		return fmt.Errorf("database.uri is required (set MONGO_URI)")
	}
	switch c.Database.VectorIndex.Similarity {
	case "cosine", "euclidean", "dotProduct":
	default:
		return fmt.Errorf("database.vector_index.similarity must be cosine, euclidean or dotProduct, got %q",
			c.Database.VectorIndex.Similarity)
	}
	if c.Search.NumCandidates > maxNumCandidates {
		return fmt.Errorf("search.num_candidates must not exceed %d, got %d", maxNumCandidates, c.Search.NumCandidates)
	}
	if c.Search.Limit > c.Search.NumCandidates {
		return fmt.Errorf("search.limit (%d) must not exceed search.num_candidates (%d)",
			c.Search.Limit, c.Search.NumCandidates)
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	switch c.Dashboard.Layout {
	case LayoutTabs, LayoutSingle:
	default:
		return fmt.Errorf("dashboard.layout must be %q or %q, got %q", LayoutTabs, LayoutSingle, c.Dashboard.Layout)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	p, ok := c.SelectedProvider()
	if !ok {
		return fmt.Errorf("embedding.provider %q has no entry in embedding.providers", c.Embedding.Provider)
	}
	switch p.Type {
	case ProviderTypeOpenAI:
		if p.BaseURL == "" && p.APIKey == "" {
			return fmt.Errorf("embedding.providers.%s.api_key is required", c.Embedding.Provider)
		}
	case ProviderTypeOllama:
	default:
		return fmt.Errorf("embedding.providers.%s.type must be %q or %q, got %q",
			c.Embedding.Provider, ProviderTypeOpenAI, ProviderTypeOllama, p.Type)
	}
	if c.Embedding.Dimensions != c.Database.VectorIndex.Dimensions {
		return fmt.Errorf("embedding.dimensions (%d) must match database.vector_index.dimensions (%d)",
			c.Embedding.Dimensions, c.Database.VectorIndex.Dimensions)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
