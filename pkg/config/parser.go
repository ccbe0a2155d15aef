package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/saturnines/factsheet-tools/pkg/errors"
	"github.com/saturnines/factsheet-tools/pkg/report"
)

// Environment variables that override workspace credentials.
const (
	EnvHost     = "LX_HOST"
	EnvAPIToken = "LX_APITOKEN"
)

type ValidationError struct {
	Field   string
	Message string
}

// Returns the string representation of validation error
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is returned by Loader.Parse when any validator fails.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "validation errors: " + strings.Join(msgs, "; ")
}

func (e ValidationErrors) Unwrap() error {
	return errors.ErrValidation
}

type Validator interface {
	Validate(cfg *File) []ValidationError
}

// DefaultValueSetter fills in unset values.
type DefaultValueSetter interface {
	SetDefaults(cfg *File)
}

// VariableExpander defines the interface for expanding variables
type VariableExpander interface {
	Expand(data []byte) []byte
}

// EnvExpander implements VariableExpander using environment variables
type EnvExpander struct{}

// Expand expands environment variables with the given data
func (e *EnvExpander) Expand(data []byte) []byte {
	return []byte(os.Expand(string(data), os.Getenv))
}

// Loader reads File configurations.
type Loader struct {
	expander      VariableExpander
	validators    []Validator
	defaultSetter DefaultValueSetter
}

// NewLoader creates a Loader with the given components
func NewLoader(
	expander VariableExpander,
	defaultSetter DefaultValueSetter,
	validators ...Validator,
) *Loader {
	return &Loader{
		expander:      expander,
		validators:    validators,
		defaultSetter: defaultSetter,
	}
}

// DefaultLoader expands env vars, applies Defaults and runs every validator.
func DefaultLoader() *Loader {
	return NewLoader(
		&EnvExpander{},
		&Defaults{},
		&WorkspaceValidator{},
		&AuthValidator{},
		&TransportValidator{},
	)
}

// Load a config from a YAML (or JSON) file
func (l *Loader) Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrConfiguration, "read config")
	}
	return l.Parse(data)
}

// Parse parses a YAML config
func (l *Loader) Parse(data []byte) (*File, error) {
	if l.expander != nil {
		data = l.expander.Expand(data)
	}

	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapError(err, errors.ErrConfiguration, "parse YAML")
	}
	return l.Finish(&cfg)
}

// Finish applies env overrides, defaults and validation to an already decoded config.
func (l *Loader) Finish(cfg *File) (*File, error) {
	ApplyEnvOverrides(cfg)

	if l.defaultSetter != nil {
		l.defaultSetter.SetDefaults(cfg)
	}

	var allErrors ValidationErrors
	for _, validator := range l.validators {
		allErrors = append(allErrors, validator.Validate(cfg)...)
	}
	if len(allErrors) > 0 {
		return nil, allErrors
	}
	return cfg, nil
}

// ApplyEnvOverrides replaces workspace credentials with LX_HOST / LX_APITOKEN when set.
func ApplyEnvOverrides(cfg *File) {
	if host := os.Getenv(EnvHost); host != "" {
		cfg.Workspace.Host = host
	}
	if token := os.Getenv(EnvAPIToken); token != "" {
		cfg.Workspace.APIToken = token
	}
}

// LoadWorkspace reads an lxr.json style credentials file. It must hold
// exactly the keys host and apitoken.
func LoadWorkspace(path string) (Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Workspace{}, errors.WrapError(err, errors.ErrConfiguration, "read workspace file")
	}
	return ParseWorkspace(data)
}

// ParseWorkspace decodes and checks lxr.json content.
func ParseWorkspace(data []byte) (Workspace, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Workspace{}, errors.WrapError(err, errors.ErrConfiguration, "parse workspace file")
	}
	if errs := validateWorkspaceKeys(raw); len(errs) > 0 {
		return Workspace{}, errs
	}

	var ws Workspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return Workspace{}, errors.WrapError(err, errors.ErrConfiguration, "parse workspace file")
	}
	return ws, nil
}

func validateWorkspaceKeys(raw map[string]any) ValidationErrors {
	var errs ValidationErrors
	for _, key := range []string{"host", "apitoken"} {
		v, ok := raw[key]
		if !ok {
			errs = append(errs, ValidationError{Field: key, Message: "is required"})
			continue
		}
		if s, ok := v.(string); !ok || s == "" {
			errs = append(errs, ValidationError{Field: key, Message: "must be a non-empty string"})
		}
	}

	var extra []string
	for key := range raw {
		if key != "host" && key != "apitoken" {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		errs = append(errs, ValidationError{Field: key, Message: "unknown key"})
	}
	return errs
}

// Defaults implements DefaultValueSetter for File
type Defaults struct{}

// SetDefaults sets default values for File
func (d *Defaults) SetDefaults(cfg *File) {
	if cfg.Auth == nil {
		cfg.Auth = &Auth{Type: AuthTypeAPIToken}
	}
	if cfg.Auth.Type == "" {
		cfg.Auth.Type = AuthTypeAPIToken
	}
	if cfg.Auth.RefreshBefore <= 0 {
		cfg.Auth.RefreshBefore = 60
	}

	if cfg.GraphQL.Timeout <= 0 {
		cfg.GraphQL.Timeout = 30
	}
	if cfg.GraphQL.PageSize <= 0 {
		cfg.GraphQL.PageSize = 100
	}
	if cfg.GraphQL.Concurrency <= 0 {
		cfg.GraphQL.Concurrency = 4
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.InitialBackoff <= 0 {
		cfg.Retry.InitialBackoff = 0.5
	}
	if cfg.Retry.BackoffMultiplier <= 0 {
		cfg.Retry.BackoffMultiplier = 2
	}
	if cfg.Retry.RetryableStatuses == nil {
		cfg.Retry.RetryableStatuses = []int{429, 503}
	}

	if len(cfg.Report.FactSheetTypes) == 0 {
		cfg.Report.FactSheetTypes = []string{"Application"}
	}
	if cfg.Report.TagGroups == nil {
		cfg.Report.TagGroups = report.Config{
			"UX-Advocate":     {Aggregated: false},
			"Non UX-Advocate": {Aggregated: true},
		}
	}
	if cfg.Seed.Count == 0 {
		cfg.Seed.Count = 300
	}
	if cfg.Seed.Type == "" {
		cfg.Seed.Type = "Application"
	}
	if cfg.Archive.Comment == "" {
		cfg.Archive.Comment = "archived"
	}
}

// WorkspaceValidator checks the workspace credentials
type WorkspaceValidator struct{}

func (v *WorkspaceValidator) Validate(cfg *File) []ValidationError {
	var errs []ValidationError
	if cfg.Workspace.Host == "" && cfg.GraphQL.Endpoint == "" {
		errs = append(errs, ValidationError{Field: "workspace.host", Message: "is required"})
	}
	bearer := cfg.Auth != nil && cfg.Auth.Type == AuthTypeBearer
	if cfg.Workspace.APIToken == "" && !bearer {
		errs = append(errs, ValidationError{Field: "workspace.apitoken", Message: "is required"})
	}
	return errs
}

// AuthValidator handles authentication validation
type AuthValidator struct{}

// Validate checks that authentication configuration is valid
func (v *AuthValidator) Validate(cfg *File) []ValidationError {
	if cfg.Auth == nil {
		return nil
	}

	var errs []ValidationError
	switch cfg.Auth.Type {
	case AuthTypeAPIToken:
	case AuthTypeBearer:
		if cfg.Auth.Bearer == nil || cfg.Auth.Bearer.Token == "" {
			errs = append(errs, ValidationError{Field: "auth.bearer.token", Message: "is required for bearer auth"})
		}
	default:
		errs = append(errs, ValidationError{Field: "auth.type", Message: fmt.Sprintf("unknown auth type: %s", cfg.Auth.Type)})
	}
	return errs
}

// TransportValidator rejects retry and paging values that cannot work.
type TransportValidator struct{}

func (v *TransportValidator) Validate(cfg *File) []ValidationError {
	var errs []ValidationError
	if cfg.Retry.MaxAttempts < 0 {
		errs = append(errs, ValidationError{Field: "retry.max_attempts", Message: "must not be negative"})
	}
	for _, status := range cfg.Retry.RetryableStatuses {
		if status < 100 || status > 599 {
			errs = append(errs, ValidationError{Field: "retry.retryable_statuses", Message: fmt.Sprintf("invalid HTTP status %d", status)})
		}
	}
	if cfg.Seed.Count < 0 {
		errs = append(errs, ValidationError{Field: "seed.count", Message: "must not be negative"})
	}
	return errs
}
