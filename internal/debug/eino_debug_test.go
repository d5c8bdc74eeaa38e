package debug

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/dyike/CortexBrief/config"
)

func TestDisabledDebuggerIsNoop(t *testing.T) {
	d := NewEinoDebugger(&config.Config{}, zerolog.Nop())

	assert.False(t, d.IsEnabled())
	assert.Empty(t, d.URL())
	assert.NoError(t, d.Initialize(context.Background()))
}

func TestEnabledDebuggerURL(t *testing.T) {
	d := NewEinoDebugger(&config.Config{EinoDebugEnabled: true}, zerolog.Nop())
	assert.Equal(t, "http://localhost:52538", d.URL())
}
