package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	reply string
	err   error
	seen  []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.seen = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func TestChainRendersPromptIntoModel(t *testing.T) {
	ctx := context.Background()
	cm := &fakeChatModel{reply: "Liquidity is draining."}

	chain, err := NewChain(ctx, "fake/model", cm, zerolog.Nop())
	require.NoError(t, err)

	// literal braces in the briefing must not be read as template fields
	note, err := chain.Generate(ctx, SystemPrompt([]string{"OKLO"}), UserPrompt("Macro {10Y} 4.41%"))
	require.NoError(t, err)

	assert.Equal(t, "Liquidity is draining.", note)
	require.Len(t, cm.seen, 2)
	assert.Equal(t, schema.System, cm.seen[0].Role)
	assert.Contains(t, cm.seen[0].Content, "watchlist (OKLO)")
	assert.Equal(t, schema.User, cm.seen[1].Role)
	assert.Equal(t, "RAW DATA:\nMacro {10Y} 4.41%", cm.seen[1].Content)
	assert.Equal(t, "fake/model", chain.Name())
}

func TestChainModelError(t *testing.T) {
	ctx := context.Background()
	chain, err := NewChain(ctx, "fake/model", &fakeChatModel{err: errors.New("rate limited")}, zerolog.Nop())
	require.NoError(t, err)

	_, err = chain.Generate(ctx, "sys", "user")
	assert.ErrorContains(t, err, "rate limited")
}

func TestChainEmptyReply(t *testing.T) {
	ctx := context.Background()
	chain, err := NewChain(ctx, "fake/model", &fakeChatModel{}, zerolog.Nop())
	require.NoError(t, err)

	_, err = chain.Generate(ctx, "sys", "user")
	assert.EqualError(t, err, "empty response from fake/model")
}
