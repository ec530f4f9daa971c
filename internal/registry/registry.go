// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry retrieves studies from the ClinicalTrials.gov v2 API.
// Searches page through results one request at a time with a fixed delay
// between pages. Request failures end the search and are absorbed: the
// caller receives whatever trials were collected before the failure.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pdiddy/clinical-trials/internal/httputil"
	"github.com/pdiddy/clinical-trials/internal/normalize"
	"github.com/pdiddy/clinical-trials/pkg/types"
)

const (
	// DefaultBaseURL is the ClinicalTrials.gov v2 studies endpoint.
	DefaultBaseURL = "https://clinicaltrials.gov/api/v2/studies"

	// MaxPageSize is the largest page the registry serves.
	MaxPageSize = 1000

	DefaultRequestDelay = 1 * time.Second
	DefaultUserAgent    = "clinical-trials/0.1"
	defaultCacheSize    = 256
)

// Client queries the registry. A Client is not safe for concurrent use; the
// pipeline issues one request at a time.
type Client struct {
	http    *http.Client
	cfg     types.FetchConfig
	log     *logrus.Logger
	limiter *rate.Limiter
	cache   *lru.Cache[string, types.Trial]
}

// FetchOutput holds the trials a search collected and what happened on the way.
type FetchOutput struct {
	Trials []types.Trial

	// Pages counts successful page responses.
	Pages int

	// Skipped counts study payloads that could not be normalized.
	Skipped int

	// Errors records the request failure that ended the search, if any.
	Errors []string
}

// NewClient builds a Client from cfg, filling unset fields with defaults.
func NewClient(cfg types.FetchConfig, log *logrus.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	cache, err := lru.New[string, types.Trial](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating study cache: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		log:     log,
		limiter: rate.NewLimiter(limit, 1),
		cache:   cache,
	}, nil
}

// Config returns the effective configuration after defaults were applied.
func (c *Client) Config() types.FetchConfig { return c.cfg }

// Search pages through studies matching query and filters until maxResults
// trials are collected, a page comes back empty, the registry reports no
// further page, or a request fails.
func (c *Client) Search(ctx context.Context, query string, filters types.SearchFilters, maxResults int) FetchOutput {
	var out FetchOutput
	if maxResults <= 0 {
		return out
	}

	pageSize := min(c.cfg.PageSize, maxResults)
	pageToken := ""

	for len(out.Trials) < maxResults {
		if err := c.limiter.Wait(ctx); err != nil {
			c.fail(&out, fmt.Errorf("waiting for next request slot: %w", err))
			break
		}

		params := buildSearchParams(query, filters, pageSize, pageToken)
		var page studiesPage
		if err := httputil.GetJSON(ctx, c.http, c.cfg.BaseURL, params, c.cfg.UserAgent, &page); err != nil {
			c.fail(&out, err)
			break
		}
		out.Pages++

		trials, skipped := normalize.Studies(page.Studies, c.log)
		out.Skipped += skipped
		if len(trials) == 0 {
			break
		}
		out.Trials = append(out.Trials, trials...)

		c.log.WithFields(logrus.Fields{
			"page":      out.Pages,
			"retrieved": len(trials),
			"total":     len(out.Trials),
		}).Info("retrieved page of trials")

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if len(out.Trials) > maxResults {
		out.Trials = out.Trials[:maxResults]
	}
	return out
}

// Get fetches a single study by NCT ID. Failures are logged and reported as
// not found. Normalized studies are cached by NCT ID.
func (c *Client) Get(ctx context.Context, nctID string) (types.Trial, bool) {
	nctID = strings.TrimSpace(nctID)
	if nctID == "" {
		c.log.Warn("empty NCT ID")
		return types.Trial{}, false
	}
	if t, ok := c.cache.Get(nctID); ok {
		c.log.WithField("nct_id", nctID).Debug("study cache hit")
		return t, true
	}

	entry := c.log.WithField("nct_id", nctID)
	if err := c.limiter.Wait(ctx); err != nil {
		entry.WithError(err).Error("waiting for request slot")
		return types.Trial{}, false
	}

	var raw json.RawMessage
	studyURL := c.cfg.BaseURL + "/" + url.PathEscape(nctID)
	params := url.Values{"format": {"json"}}
	if err := httputil.GetJSON(ctx, c.http, studyURL, params, c.cfg.UserAgent, &raw); err != nil {
		entry.WithError(err).Error("retrieving trial")
		return types.Trial{}, false
	}

	t, err := normalize.Study(raw)
	if err != nil {
		entry.WithError(err).Error("normalizing trial")
		return types.Trial{}, false
	}
	c.cache.Add(nctID, t)
	return t, true
}

func (c *Client) fail(out *FetchOutput, err error) {
	c.log.WithFields(logrus.Fields{
		"error":     err,
		"collected": len(out.Trials),
	}).Error("registry request failed")
	out.Errors = append(out.Errors, err.Error())
}

// studiesPage is one page of the studies endpoint.
type studiesPage struct {
	Studies       []json.RawMessage `json:"studies"`
	NextPageToken string            `json:"nextPageToken"`
	TotalCount    int               `json:"totalCount"`
}
