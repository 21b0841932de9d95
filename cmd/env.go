package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/config"
	"github.com/abhisek/skillquest/internal/credentials"
	"github.com/abhisek/skillquest/internal/metrics"
	"github.com/abhisek/skillquest/internal/store"
)

// env is everything a command needs to talk to the API: resolved config,
// the open local store, both credential slots and the clients bound to
// them.
type env struct {
	cfg      config.Config
	store    *store.Store
	metrics  *metrics.Metrics
	user     *credentials.Store
	admin    *credentials.Store
	client   *api.Client
	adminAPI *api.AdminClient
}

// loadConfig resolves configuration: defaults, then the YAML file, then
// the environment (after the dotenv file), then command-line flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return config.Config{}, err
		}
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v, _ := flags.GetString("lang"); v != "" {
		cfg.Language = v
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if v, _ := flags.GetString("metrics-addr"); v != "" {
		cfg.MetricsAddr = v
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openEnv loads config, opens the store, restores both credential slots
// and builds the API clients. Callers must Close the result.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	ctx := commandContext(cmd)
	user := credentials.New(st.CredentialRepo(), store.SlotUser)
	admin := credentials.New(st.CredentialRepo(), store.SlotAdmin)
	for _, c := range []*credentials.Store{user, admin} {
		if err := c.Load(ctx); err != nil {
			st.Close()
			return nil, err
		}
	}

	m := metrics.New()
	hc := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: api.WithLogging(http.DefaultTransport, st.EventRepo(), m),
	}

	return &env{
		cfg:      cfg,
		store:    st,
		metrics:  m,
		user:     user,
		admin:    admin,
		client:   api.New(cfg.APIURL, user, api.WithHTTPClient(hc), api.WithCache(cfg.CacheTTL)),
		adminAPI: api.NewAdmin(cfg.APIURL, admin, api.WithHTTPClient(hc)),
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// requireUser fails early when no player token is stored.
func (e *env) requireUser() error {
	if !e.user.LoggedIn() {
		return fmt.Errorf("%w: run `skillquest login` first", credentials.ErrNoToken)
	}
	return nil
}

// requireAdmin fails early when no operator token is stored.
func (e *env) requireAdmin() error {
	if !e.admin.LoggedIn() {
		return fmt.Errorf("%w: run `skillquest admin login` first", credentials.ErrNoToken)
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
