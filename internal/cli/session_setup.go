package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rshade/subview/internal/apiclient"
	"github.com/rshade/subview/internal/billingstore"
	"github.com/rshade/subview/internal/config"
	"github.com/rshade/subview/internal/logging"
	"github.com/rshade/subview/internal/metrics"
	"github.com/rshade/subview/internal/session"
)

// resolveVariant picks the --variant flag, falling back to the config.
func resolveVariant(cfg *config.Config, flag string) (session.Variant, error) {
	if flag == "" {
		flag = cfg.Session.Variant
	}
	return session.ParseVariant(flag)
}

// newSession wires a session for variant from cfg: API clients, the shared
// billing store and a fresh metrics registry.
func newSession(
	ctx context.Context,
	cfg *config.Config,
	variant session.Variant,
	notifier session.Notifier,
) (*session.Session, *prometheus.Registry, error) {
	log := logging.FromContext(ctx)

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	clientOpts := []apiclient.Option{apiclient.WithTimeout(cfg.API.Timeout)}
	if cfg.API.Token != "" {
		clientOpts = append(clientOpts, apiclient.WithToken(cfg.API.Token))
	}

	routes := apiclient.RoutesUnified
	if variant == session.VariantProfile {
		routes = apiclient.RoutesProfile
	}
	backend, err := apiclient.New(cfg.API.BaseURL, routes, clientOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating API client: %w", err)
	}

	store, err := billingstore.New(cfg.Cache.Capacity)
	if err != nil {
		return nil, nil, fmt.Errorf("creating billing store: %w", err)
	}

	reg := prometheus.NewRegistry()
	opts := []session.Option{
		session.WithVariant(variant),
		session.WithNotifier(notifier),
		session.WithStore(store),
		session.WithMetrics(metrics.New(reg)),
		session.WithPollInterval(cfg.Session.PollInterval),
		session.WithPageSize(session.SectionPayments, cfg.Session.PageSize),
		session.WithPageSize(session.SectionManagers, cfg.Session.PageSize),
		session.WithPageSize(session.SectionDomains, cfg.Session.PageSize),
		session.WithPageSize(session.SectionUsers, cfg.Session.UsersPageSize),
		session.WithDirectoryBatchSize(cfg.Session.DirectoryBatchSize),
	}
	if variant == session.VariantUnified {
		dir, dirErr := apiclient.NewDirectory(cfg.DirectoryBaseURL(), clientOpts...)
		if dirErr != nil {
			return nil, nil, fmt.Errorf("creating directory client: %w", dirErr)
		}
		opts = append(opts, session.WithDirectory(dir))
	}

	s, err := session.New(backend, opts...)
	if err != nil {
		return nil, nil, err
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "cli").
		Str("operation", "new_session").
		Str("variant", string(variant)).
		Str("base_url", cfg.API.BaseURL).
		Msg("session created")

	return s, reg, nil
}
