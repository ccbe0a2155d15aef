package auth

import (
	"fmt"
	"time"

	"github.com/saturnines/factsheet-tools/pkg/config"
	"github.com/saturnines/factsheet-tools/pkg/errors"
)

func createAPITokenAuth(cfg *config.File, deps Deps) (Session, error) {
	var opts []Option
	if deps.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(deps.HTTPClient))
	}
	if deps.Logger != nil {
		opts = append(opts, WithLogger(deps.Logger.Named("auth")))
	}
	if cfg.Auth != nil && cfg.Auth.RefreshBefore > 0 {
		opts = append(opts, WithRefreshBefore(time.Duration(cfg.Auth.RefreshBefore)*time.Second))
	}
	return NewAPITokenAuth(cfg.Workspace.Host, cfg.Workspace.APIToken, opts...)
}

func createBearerAuth(cfg *config.File, _ Deps) (Session, error) {
	if cfg.Auth == nil || cfg.Auth.Bearer == nil {
		return nil, errors.WrapError(
			fmt.Errorf("bearer token configuration is required"),
			errors.ErrConfiguration,
			"create bearer auth",
		)
	}
	return NewBearerAuth(cfg.Auth.Bearer.Token), nil
}
