package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/subview/internal/config"
	"github.com/rshade/subview/internal/pagination"
	"github.com/rshade/subview/internal/session"
	"github.com/rshade/subview/internal/tui"
)

// Output formats of the show command.
const (
	outputTable = "table"
	outputJSON  = "json"
)

// defaultShowTimeout bounds how long show waits for every section to settle.
const defaultShowTimeout = time.Minute

// Errors reported for a root load that did not produce a subscription.
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrServiceUnavailable   = errors.New("subscription service failed to respond")
)

// ErrUnknownSection is returned by --page for a name that is not a paginated section.
var ErrUnknownSection = errors.New("unknown paginated section")

type showParams struct {
	variant string
	output  string
	timeout time.Duration
	pages   map[string]int
}

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	var params showParams

	cmd := &cobra.Command{
		Use:   "show <uuid>",
		Short: "Load a subscription and print its detail view",
		Long: `Loads the subscription and every section admitted for it, waits until all
requests have settled and prints the result. Sections that fail to load are
reported on stderr and the rest of the view is still printed.`,
		Example: `  subview show 5f0c6d3e-2a51-4d8e-9b7a-0c1f2e3d4a5b
  subview show 5f0c6d3e-2a51-4d8e-9b7a-0c1f2e3d4a5b --variant profile --output json
  subview show 5f0c6d3e-2a51-4d8e-9b7a-0c1f2e3d4a5b --page payments=2,users=3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], params)
		},
	}

	cmd.Flags().StringVar(&params.variant, "variant", "", "view variant: profile or unified (default from config)")
	cmd.Flags().StringVarP(&params.output, "output", "o", "", "output format: table or json (default from config)")
	cmd.Flags().DurationVar(&params.timeout, "timeout", defaultShowTimeout, "maximum time to wait for all sections")
	cmd.Flags().StringToIntVar(&params.pages, "page", nil, "pages to show per section, e.g. payments=2")

	return cmd
}

func runShow(cmd *cobra.Command, id string, params showParams) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	variant, err := resolveVariant(cfg, params.variant)
	if err != nil {
		return err
	}
	format := params.output
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	if format != outputTable && format != outputJSON {
		return fmt.Errorf("unsupported output format %q", format)
	}
	pages, err := parsePages(params.pages)
	if err != nil {
		return err
	}

	notes := &session.Recorder{}
	s, _, err := newSession(ctx, cfg, variant, notes)
	if err != nil {
		return err
	}
	defer s.Close()

	if err = s.Open(ctx, id); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, params.timeout)
	defer cancel()
	if err = s.WaitIdle(waitCtx); err != nil {
		return fmt.Errorf("waiting for subscription %s: %w", id, err)
	}
	if len(pages) > 0 {
		for sec, page := range pages {
			if _, err = s.UpdatePagination(sec, pagination.ToPage(page)); err != nil {
				return err
			}
		}
		if err = s.WaitIdle(waitCtx); err != nil {
			return fmt.Errorf("waiting for subscription %s: %w", id, err)
		}
	}

	snap := s.Snapshot()
	if err = writeSnapshot(cmd, snap, format); err != nil {
		return err
	}
	for _, n := range notes.Drain() {
		cmd.PrintErrf("Warning: %s\n", n.Message)
	}

	switch snap.Status {
	case session.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, id)
	case session.StatusServerError:
		return fmt.Errorf("%w: %s", ErrServiceUnavailable, id)
	case session.StatusIdle, session.StatusLoading, session.StatusReady:
	}
	return nil
}

// parsePages resolves --page section names.
func parsePages(raw map[string]int) (map[session.Section]int, error) {
	pages := make(map[session.Section]int, len(raw))
	for name, page := range raw {
		sec, ok := session.ParseSection(name)
		if !ok || !sec.Paginated() {
			return nil, fmt.Errorf("%w %q (one of: %s)", ErrUnknownSection, name, paginatedNames())
		}
		if page < 1 {
			return nil, fmt.Errorf("page for %s must be >= 1, got %d", sec, page)
		}
		pages[sec] = page
	}
	return pages, nil
}

func paginatedNames() string {
	var names []string
	for _, sec := range session.AllSections() {
		if sec.Paginated() {
			names = append(names, sec.String())
		}
	}
	return strings.Join(names, ", ")
}

func writeSnapshot(cmd *cobra.Command, snap session.Snapshot, format string) error {
	out := cmd.OutOrStdout()
	if format == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		return nil
	}

	width := 0
	if out == os.Stdout {
		width = terminalWidth(os.Stdout)
	}
	_, err := fmt.Fprint(out, tui.RenderSnapshot(snap, tui.RenderOptions{Width: width}))
	return err
}
