package display

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainBriefing(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Plain().Briefing("Daily Briefing 2025-06-02", "Yields up.", "=== RAW ===")

	assert.Equal(t, "🧠 Daily Briefing 2025-06-02\nYields up.\n\n=== RAW ===\n", buf.String())
}

func TestBriefingWithoutNote(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Plain().Briefing("Daily Briefing", "  ", "raw")

	assert.Equal(t, "🧠 Daily Briefing\nraw\n", buf.String())
}

func TestStatusLines(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf).Plain()
	p.Error(errors.New("boom"), "dispatch")
	p.Warning("slow source")
	p.Success("sent")
	p.Info("starting")

	assert.Equal(t, "❌ Error in dispatch: boom\n⚠️  Warning: slow source\n✅ sent\nℹ️  starting\n", buf.String())
}
