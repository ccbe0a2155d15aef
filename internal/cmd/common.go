package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/saturnines/factsheet-tools/pkg/auth"
	"github.com/saturnines/factsheet-tools/pkg/config"
	"github.com/saturnines/factsheet-tools/pkg/errors"
	"github.com/saturnines/factsheet-tools/pkg/factsheet"
	"github.com/saturnines/factsheet-tools/pkg/log"
	"github.com/saturnines/factsheet-tools/pkg/transport"
	"github.com/saturnines/factsheet-tools/pkg/transport/graphql"
)

const defaultEnvFile = ".env"

// loadEnv loads the env file named by the flag, or .env when it exists.
func loadEnv(flags *globalFlags) error {
	name := flags.envFile
	if name == "" {
		name = defaultEnvFile
	}
	err := godotenv.Load(name)
	if err == nil || (flags.envFile == "" && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return errors.WrapError(err, errors.ErrConfiguration, "load env file")
}

// loadConfig reads the YAML config when given; otherwise it builds one
// from the lxr.json credentials and the environment.
func loadConfig(flags *globalFlags) (*config.File, error) {
	if err := loadEnv(flags); err != nil {
		return nil, err
	}

	loader := config.DefaultLoader()
	if flags.configPath != "" {
		return loader.Load(flags.configPath)
	}

	cfg := &config.File{}
	if os.Getenv(config.EnvHost) == "" || os.Getenv(config.EnvAPIToken) == "" {
		ws, err := config.LoadWorkspace(flags.lxrPath)
		if err != nil {
			return nil, err
		}
		cfg.Workspace = ws
	}
	return loader.Finish(cfg)
}

// session bundles the started authenticator with the clients built on it.
type session struct {
	cfg     *config.File
	auth    auth.Session
	client  *graphql.Client
	service *factsheet.Service
	log     *zap.Logger
}

func newSession(ctx context.Context, flags *globalFlags) (*session, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger := log.Get()
	timeout := time.Duration(cfg.GraphQL.Timeout) * time.Second
	retry := transport.NewRetryTransport(http.DefaultTransport, cfg.Retry, logger.Named("retry"))

	authSession, err := auth.CreateSession(cfg, auth.Deps{
		HTTPClient: &http.Client{Transport: retry, Timeout: timeout},
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	if _, err := authSession.Start(ctx); err != nil {
		return nil, err
	}

	endpoint := cfg.GraphQL.Endpoint
	if endpoint == "" {
		endpoint = graphql.Endpoint(cfg.Workspace.Host)
	}
	doer := &http.Client{
		Transport: auth.NewRoundTripper(retry, authSession, logger.Named("auth")),
		Timeout:   timeout,
	}
	client := graphql.NewClient(endpoint, doer, graphql.WithLogger(logger.Named("graphql")))

	return &session{
		cfg:    cfg,
		auth:   authSession,
		client: client,
		service: factsheet.NewService(client,
			factsheet.WithLogger(logger.Named("factsheet")),
			factsheet.WithPageSize(cfg.GraphQL.PageSize),
			factsheet.WithConcurrency(cfg.GraphQL.Concurrency),
		),
		log: logger,
	}, nil
}

func (s *session) Close() {
	s.auth.Stop()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
