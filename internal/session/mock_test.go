package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/generative-ai-go/genai"

	"github.com/jonathan/hash-resume/internal/assistant"
	"github.com/jonathan/hash-resume/internal/llm"
	"github.com/jonathan/hash-resume/internal/payment"
	"github.com/jonathan/hash-resume/internal/storage"
)

type stubClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string) (string, error)
}

func (c *stubClient) GenerateContent(ctx context.Context, prompt string, _ llm.ModelTier) (string, error) {
	if c.GenerateContentFunc != nil {
		return c.GenerateContentFunc(ctx, prompt)
	}
	return "", nil
}

func (c *stubClient) GenerateJSON(ctx context.Context, prompt string, _ llm.ModelTier, _ *genai.Schema) (string, error) {
	if c.GenerateJSONFunc != nil {
		return c.GenerateJSONFunc(ctx, prompt)
	}
	return `{}`, nil
}

func (c *stubClient) GetModel(llm.ModelTier) string { return "stub" }

func (c *stubClient) Close() error { return nil }

type stubGateway struct {
	status    atomic.Value // string
	registers atomic.Int32
	polls     atomic.Int32
}

func newStubGateway(status string) *stubGateway {
	g := &stubGateway{}
	g.status.Store(status)
	return g
}

func (g *stubGateway) Register(context.Context, string) error {
	g.registers.Add(1)
	return nil
}

func (g *stubGateway) Status(context.Context, string) (string, error) {
	g.polls.Add(1)
	return g.status.Load().(string), nil
}

func testFlowConfig() payment.FlowConfig {
	return payment.FlowConfig{
		PollInterval:       10 * time.Millisecond,
		ConfirmDelay:       20 * time.Millisecond,
		MinReferenceLength: 6,
	}
}

func newTestSession(store storage.Store, client llm.Client, gateway payment.Gateway) *Session {
	var a *assistant.Assistant
	if client != nil {
		a = assistant.New(client)
	}
	return New(store, Options{
		QuietPeriod: 20 * time.Millisecond,
		Assistant:   a,
		Gateway:     gateway,
		Flow:        testFlowConfig(),
		PrintPDF: func(_ context.Context, html string) ([]byte, error) {
			return []byte("%PDF-" + html[:10]), nil
		},
	})
}
