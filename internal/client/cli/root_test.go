package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRootCommand_Tree(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"register", "login", "logout", "shell", "sync", "status", "queue", "retry", "export", "decrypt", "version"} {
		require.Contains(t, names, want)
	}
	require.NotNil(t, root.PersistentFlags().Lookup("server"))
	require.NotNil(t, root.PersistentFlags().Lookup("db"))
}

func TestVersionCommand_SkipsAppSetup(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "Build version:")
}

func TestRetryCommand_RequiresArgument(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"retry"})
	require.Error(t, root.Execute())
}

func TestDefaultExportPath(t *testing.T) {
	ts := time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)
	require.Equal(t, "notekeeper-20240305-070809.json", defaultExportPath(ts, false))
	require.Equal(t, "notekeeper-20240305-070809.nkx", defaultExportPath(ts, true))
}
