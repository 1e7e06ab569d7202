package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandListsSubcommands(t *testing.T) {
	root := newRootCommand()

	names := make([]string, 0)
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	require.ElementsMatch(t, []string{"serve", "migrate", "reset"}, names)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	require.NotNil(t, serve.Flags().Lookup("reset"))
}

func TestResetCommandOnMemoryStore(t *testing.T) {
	t.Setenv("EXERCISETRACKER_STORE__DRIVER", "memory")
	t.Setenv("EXERCISETRACKER_OBSERVABILITY__LOGGING__LEVEL", "error")

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"reset"})
	require.NoError(t, root.ExecuteContext(context.Background()))
}

func TestServeFailsOnInvalidConfig(t *testing.T) {
	t.Setenv("EXERCISETRACKER_STORE__DRIVER", "sqlite")

	root := newRootCommand()
	root.SetArgs([]string{"serve"})
	require.ErrorContains(t, root.ExecuteContext(context.Background()), "invalid config")
}
