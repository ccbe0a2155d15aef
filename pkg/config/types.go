package config

import (
	"strings"

	"github.com/saturnines/factsheet-tools/pkg/report"
)

// File is the full tool configuration.
type File struct {
	Workspace Workspace   `yaml:"workspace"`         // Required workspace credentials
	Auth      *Auth       `yaml:"auth,omitempty"`    // Optional, defaults to api_token
	GraphQL   GraphQL     `yaml:"graphql,omitempty"` // Transport settings
	Retry     RetryConfig `yaml:"retry,omitempty"`   // Retry policy for transient HTTP failures
	Report    Report      `yaml:"report,omitempty"`  // Tag report settings
	Seed      Seed        `yaml:"seed,omitempty"`    // Test data generation
	Archive   Archive     `yaml:"archive,omitempty"` // Bulk archive settings
}

// Workspace holds the host and API token of a workspace. It has the same
// shape as lxr.json.
type Workspace struct {
	Host     string `yaml:"host" json:"host"`
	APIToken string `yaml:"apitoken" json:"apitoken"`
}

// AuthType defines current supported authentication types
type AuthType string

const (
	AuthTypeAPIToken AuthType = "api_token"
	AuthTypeBearer   AuthType = "bearer"
)

// Auth selects how requests are authenticated.
type Auth struct {
	Type          AuthType    `yaml:"type"`
	Bearer        *BearerAuth `yaml:"bearer,omitempty"`
	RefreshBefore int         `yaml:"refresh_before,omitempty"` // Seconds before expiry to refresh token
}

// BearerAuth is a pre-issued access token.
type BearerAuth struct {
	Token string `yaml:"token"`
}

// GraphQL holds transport settings.
type GraphQL struct {
	Endpoint    string `yaml:"endpoint,omitempty"`    // Overrides the endpoint derived from the host
	Timeout     int    `yaml:"timeout,omitempty"`     // Seconds
	PageSize    int    `yaml:"page_size,omitempty"`   // Factsheets per page
	Concurrency int    `yaml:"concurrency,omitempty"` // Parallel facet queries
}

// RetryConfig controls the retry transport.
type RetryConfig struct {
	MaxAttempts       int     `yaml:"max_attempts,omitempty"`
	InitialBackoff    float64 `yaml:"initial_backoff,omitempty"` // Seconds
	BackoffMultiplier float64 `yaml:"backoff_multiplier,omitempty"`
	RetryableStatuses []int   `yaml:"retryable_statuses,omitempty"`
}

// Report selects what the tag report covers.
type Report struct {
	FactSheetTypes []string      `yaml:"fact_sheet_types,omitempty"`
	TagGroups      report.Config `yaml:"tag_groups,omitempty"`
}

// Seed controls how many factsheets are created and of which type.
type Seed struct {
	Count int    `yaml:"count,omitempty"`
	Type  string `yaml:"type,omitempty"`
}

// Archive holds the comment recorded on archived factsheets.
type Archive struct {
	Comment string `yaml:"comment,omitempty"`
}

// BaseURL returns the workspace origin. Hosts without a scheme are served over https.
func (w Workspace) BaseURL() string {
	return BaseURL(w.Host)
}

// BaseURL normalises host into an origin with scheme and no trailing slash.
func BaseURL(host string) string {
	u := strings.TrimRight(strings.TrimSpace(host), "/")
	if u == "" {
		return ""
	}
	if !strings.Contains(u, "://") {
		u = "https://" + u
	}
	return u
}
