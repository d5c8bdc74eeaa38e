package cli

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexBrief/config"
)

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"run", "raw", "serve", "schedule", "config", "version"}, names)

	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	assert.NotNil(t, run.Flags().Lookup("confirm"))
}

func TestVersionSkipsBootstrap(t *testing.T) {
	t.Setenv("LOG_LEVEL", "not-a-level")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	assert.NoError(t, root.Execute())
}

func TestBootstrapRejectsInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "not-a-level")

	_, err := bootstrap(&flags{})
	assert.Error(t, err)
}

func TestSourceWarnings(t *testing.T) {
	a := &app{cfg: &config.Config{FredAPIKey: "k"}, logger: zerolog.Nop()}

	warnings := sourceWarnings(a)
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "CONGRESS_KEY")
	assert.Contains(t, warnings[1], "FINNHUB_KEY")
	assert.Contains(t, warnings[2], "Longport")
}
