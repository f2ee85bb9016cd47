package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/subview/internal/cli"
)

func TestMainComponents(t *testing.T) {
	t.Run("version available", func(t *testing.T) {
		assert.NotEmpty(t, version)
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version)
		assert.Equal(t, "subview", root.Use)
		assert.Equal(t, version, root.Version)
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error returns 0", nil, exitOK},
		{"not found", fmt.Errorf("%w: x", cli.ErrSubscriptionNotFound), exitNotFound},
		{"unavailable", fmt.Errorf("%w: x", cli.ErrServiceUnavailable), exitUnavailable},
		{"wrapped not found", errors.Join(errors.New("outer"), cli.ErrSubscriptionNotFound), exitNotFound},
		{"generic error", errors.New("generic error"), exitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
