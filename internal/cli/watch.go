package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/subview/internal/config"
	"github.com/rshade/subview/internal/logging"
	"github.com/rshade/subview/internal/metrics"
	"github.com/rshade/subview/internal/tui"
)

// ErrNotInteractive is returned when watch runs without a terminal.
var ErrNotInteractive = errors.New("watch needs an interactive terminal; use show instead")

const (
	notificationBuffer    = 16
	metricsReadTimeout    = 5 * time.Second
	metricsShutdownPeriod = 2 * time.Second
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	var (
		variant     string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch <uuid>",
		Short: "Follow a subscription in an interactive view",
		Long: `Opens a live detail view. Sections refresh as requests settle, paginated
sections can be paged, and a scheduled activation is polled until the
subscription changes.`,
		Example: `  subview watch 5f0c6d3e-2a51-4d8e-9b7a-0c1f2e3d4a5b
  subview watch 5f0c6d3e-2a51-4d8e-9b7a-0c1f2e3d4a5b --metrics-addr :9090`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], variant, metricsAddr)
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "", "view variant: profile or unified (default from config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}

func runWatch(cmd *cobra.Command, id, variantFlag, metricsAddr string) error {
	if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
		return ErrNotInteractive
	}
	quietTerminalLogs(cmd)

	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	variant, err := resolveVariant(cfg, variantFlag)
	if err != nil {
		return err
	}

	notes := tui.NewChannelNotifier(notificationBuffer)
	s, reg, err := newSession(ctx, cfg, variant, notes)
	if err != nil {
		return err
	}
	defer s.Close()

	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           metrics.Handler(reg),
			ReadHeaderTimeout: metricsReadTimeout,
		}
		go serveMetrics(ctx, srv)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownPeriod)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err = s.Open(ctx, id); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewWatchModel(ctx, s, notes), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

func serveMetrics(ctx context.Context, srv *http.Server) {
	log := logging.FromContext(ctx)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().
			Ctx(ctx).
			Str("component", "cli").
			Str("operation", "serve_metrics").
			Err(err).
			Str("addr", srv.Addr).
			Msg("metrics server stopped")
	}
}
