package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/ReelBoard/internal/llm"
	"github.com/Corphon/ReelBoard/internal/utils"
)

type fakeProvider struct {
	lastReq llm.CompletionRequest
	block   bool
	err     error
}

func (f *fakeProvider) Initialize(map[string]string) error { return nil }
func (f *fakeProvider) GetName() string                    { return "fake" }
func (f *fakeProvider) DefaultModel() string               { return "fake-1" }

func (f *fakeProvider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.lastReq = req
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Text: "reply", TokensUsed: 3}, nil
}

func TestLLMServiceUsesConfiguredModel(t *testing.T) {
	p := &fakeProvider{}
	svc := NewLLMService(p, "fake", WithModel("fake-2"), WithMetrics(utils.NewAPIMetrics(false)))

	out, err := svc.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "reply", out)
	assert.Equal(t, "fake-2", p.lastReq.Model)
	assert.Equal(t, "hello", p.lastReq.Prompt)
	assert.Equal(t, "fake-2", svc.GetDefaultModel())
}

func TestLLMServiceDefaultModelFromProvider(t *testing.T) {
	svc := NewLLMService(&fakeProvider{}, "fake", WithModel(""))
	assert.Equal(t, "fake-1", svc.GetDefaultModel())
}

func TestLLMServiceTimeout(t *testing.T) {
	svc := NewLLMService(&fakeProvider{block: true}, "fake", WithTimeout(10*time.Millisecond))
	_, err := svc.Complete(context.Background(), "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLLMServicePassesErrorsThrough(t *testing.T) {
	want := errors.New("upstream down")
	svc := NewLLMService(&fakeProvider{err: want}, "fake")
	_, err := svc.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, want)
}
