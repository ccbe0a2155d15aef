package auth

import (
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/saturnines/factsheet-tools/pkg/config"
	"github.com/saturnines/factsheet-tools/pkg/errors"
)

// Deps are the shared collaborators handed to every creator.
type Deps struct {
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Creator builds a Session from the tool configuration.
type Creator func(cfg *config.File, deps Deps) (Session, error)

// Registry maintains a registry of auth session creators
type Registry struct {
	creators map[config.AuthType]Creator
	mutex    sync.RWMutex
}

// NewRegistry creates a new registry with the default creators
func NewRegistry() *Registry {
	registry := &Registry{
		creators: make(map[config.AuthType]Creator),
	}

	registry.Register(config.AuthTypeAPIToken, createAPITokenAuth)
	registry.Register(config.AuthTypeBearer, createBearerAuth)
	return registry
}

// Register adds a new creator to the registry
func (r *Registry) Register(authType config.AuthType, creator Creator) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.creators[authType] = creator
}

// Create builds the session selected by cfg.Auth. A nil Auth selects api_token.
func (r *Registry) Create(cfg *config.File, deps Deps) (Session, error) {
	authType := config.AuthTypeAPIToken
	if cfg.Auth != nil && cfg.Auth.Type != "" {
		authType = cfg.Auth.Type
	}

	r.mutex.RLock()
	creator, exists := r.creators[authType]
	r.mutex.RUnlock()

	if !exists {
		return nil, errors.WrapError(
			fmt.Errorf("unsupported auth type: %s", authType),
			errors.ErrConfiguration,
			"invalid auth type",
		)
	}

	return creator(cfg, deps)
}

// DefaultRegistry is used by CreateSession.
var DefaultRegistry = NewRegistry()

// CreateSession builds a session with DefaultRegistry.
func CreateSession(cfg *config.File, deps Deps) (Session, error) {
	return DefaultRegistry.Create(cfg, deps)
}
