package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Default artifact names inside DataDir.
const (
	RawTreesFile         = "Street_Tree_List.csv"
	CleanTreesFile       = "cleaned_street_trees.csv"
	NeighborhoodsCSVFile = "Analysis_Neighborhoods.csv"
	NeighborhoodsFile    = "neighborhood_mapping.json"
	GenusListFile        = "genus_list.json"
	GenusSpeciesFile     = "genus_to_species.json"
	GeoJSONFile          = "trees.geojson"
	LookupFile           = "trees-lookup.json"
)

// Config holds the toolkit settings, populated from environment variables.
// Command-line flags override individual fields.
type Config struct {
	DataDir         string
	LogLevel        string
	LogFormat       string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	GeoJSONPretty    bool
	SpeciesCacheSize int
	MetricsTextfile  string
	RulesFile        string

	KafkaBrokers []string
	KafkaTopic   string
	BatchSize    int

	S3Bucket   string
	S3Prefix   string
	S3Region   string
	S3Endpoint string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	pretty, err := parseBool("GEOJSON_PRETTY", false)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:          sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout:  shutdownTimeout,
		GeoJSONPretty:    pretty,
		SpeciesCacheSize: cacheSize,
		MetricsTextfile:  os.Getenv("METRICS_TEXTFILE"),
		RulesFile:        os.Getenv("RULES_FILE"),
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:       sharedcfg.EnvOrDefault("KAFKA_TOPIC", "street-trees"),
		BatchSize:        batchSize,
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Prefix:         os.Getenv("S3_PREFIX"),
		S3Region:         sharedcfg.EnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	return cfg, nil
}

// Path returns the location of a named artifact inside DataDir.
func (c *Config) Path(name string) string {
	return filepath.Join(c.DataDir, name)
}

// ValidatePublish checks the settings the publish command depends on.
func (c *Config) ValidatePublish() error {
	if len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required")
	}
	return nil
}

// ValidateUpload checks the settings the upload command depends on.
func (c *Config) ValidateUpload() error {
	if c.S3Bucket == "" {
		return errors.New("S3_BUCKET is required")
	}
	return nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("invalid " + key)
	}
	return v, nil
}

func parseCacheSize() (int, error) {
	s := os.Getenv("SPECIES_CACHE_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid SPECIES_CACHE_SIZE")
	}
	return n, nil
}
