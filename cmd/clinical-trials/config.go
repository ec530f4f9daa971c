// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/clinical-trials/internal/export"
	"github.com/pdiddy/clinical-trials/internal/registry"
	"github.com/pdiddy/clinical-trials/pkg/types"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultMaxResults = 1000
	defaultOutputDir  = "./data"
)

// defaultSearchTerms form the query when none is given.
var defaultSearchTerms = []string{
	"interventional",
	"clinical trial",
	"phase 1",
	"phase 2",
	"phase 3",
	"phase 4",
}

// setDefaults registers a default for every configuration key so that
// environment variables are picked up for all of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("fetch.base_url", registry.DefaultBaseURL)
	v.SetDefault("fetch.page_size", registry.MaxPageSize)
	v.SetDefault("fetch.request_delay", registry.DefaultRequestDelay)
	v.SetDefault("fetch.timeout", defaultTimeout)
	v.SetDefault("fetch.user_agent", registry.DefaultUserAgent)
	v.SetDefault("fetch.cache_size", 256)

	v.SetDefault("export.output_dir", defaultOutputDir)
	v.SetDefault("export.format", string(types.FormatCSV))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("max_results", defaultMaxResults)
	v.SetDefault("default_search_terms", defaultSearchTerms)
}

// decodeConfig unmarshals v into a Config and validates it.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}

	format, err := export.ParseFormat(string(c.Export.Format))
	if err != nil {
		return types.Config{}, err
	}
	c.Export.Format = format

	if c.Export.OutputDir == "" {
		c.Export.OutputDir = defaultOutputDir
	}
	if c.MaxResults <= 0 {
		c.MaxResults = defaultMaxResults
	}
	if len(c.DefaultSearchTerms) == 0 {
		c.DefaultSearchTerms = defaultSearchTerms
	}
	return c, nil
}
