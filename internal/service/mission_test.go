package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexBrief/internal/briefing"
	"github.com/dyike/CortexBrief/internal/notify"
)

type fixedGenerator struct{ calls int }

func (g *fixedGenerator) Generate(ctx context.Context) *briefing.Report {
	g.calls++
	return &briefing.Report{
		RunID: "run-1",
		Date:  time.Date(2025, 6, 2, 7, 30, 0, 0, time.UTC),
		Text:  "=== INTELLIGENCE BRIEFING: 2025-06-02 ===",
	}
}

type noteSummarizer string

func (n noteSummarizer) Summarize(ctx context.Context, briefing string) string { return string(n) }

type fakeDispatcher struct {
	err  error
	sent []notify.Message
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func TestMissionDelivers(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	m := NewMission(&fixedGenerator{}, noteSummarizer("Yields up."), dispatcher, zerolog.Nop())

	out, err := m.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, out.Delivered)
	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, "Daily Briefing 2025-06-02", dispatcher.sent[0].Subject)
	assert.Equal(t, "Yields up.", dispatcher.sent[0].Note)
	assert.Equal(t, "run-1", dispatcher.sent[0].RunID)
}

func TestMissionSkipsEmptyNote(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	out, err := NewMission(&fixedGenerator{}, noteSummarizer("  "), dispatcher, zerolog.Nop()).Run(context.Background(), nil)

	require.NoError(t, err)
	assert.False(t, out.Delivered)
	assert.Empty(t, dispatcher.sent)
}

func TestMissionConfirmDeclined(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	m := NewMission(&fixedGenerator{}, noteSummarizer("note"), dispatcher, zerolog.Nop())

	out, err := m.Run(context.Background(), func(notify.Message) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.False(t, out.Delivered)
	assert.Empty(t, dispatcher.sent)
}

func TestMissionDispatchError(t *testing.T) {
	m := NewMission(&fixedGenerator{}, noteSummarizer("note"), &fakeDispatcher{err: errors.New("smtp down")}, zerolog.Nop())

	out, err := m.Run(context.Background(), nil)
	assert.ErrorContains(t, err, "smtp down")
	assert.False(t, out.Delivered)
	assert.NotNil(t, out.Report)
}
