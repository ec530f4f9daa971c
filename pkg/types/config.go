package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero leaves the transport default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchConfig holds settings for the registry fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the studies endpoint (default https://clinicaltrials.gov/api/v2/studies).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// PageSize is the number of studies requested per page (max 1000).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// RequestDelay is the fixed delay between consecutive page requests (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// CacheSize bounds the single-study lookup cache (default 256 entries).
	CacheSize int `json:"cache_size" yaml:"cache_size" mapstructure:"cache_size"`
}

// ExportFormat selects the export file format.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatBoth ExportFormat = "both"
)

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// OutputDir is the base directory for exports (contains interventional_trials/, phase_dates/).
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Format selects csv, json, or both.
	Format ExportFormat `json:"format" yaml:"format" mapstructure:"format"`
}

// LoggingConfig controls the logrus logger.
type LoggingConfig struct {
	// Level is a logrus level name (default "info").
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all stage configurations.
type Config struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Export  ExportConfig  `json:"export" yaml:"export" mapstructure:"export"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`

	// MaxResults is the default number of trials a search retrieves.
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// DefaultSearchTerms are joined into the query when none is given.
	DefaultSearchTerms []string `json:"default_search_terms" yaml:"default_search_terms" mapstructure:"default_search_terms"`
}
