package genie

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/lampadamagica/genio/backend/internal/config"
)

// historyWindow bounds how many prior messages travel with each turn.
const historyWindow = 20

// runner is the slice of compose.Runnable the dispatcher needs. Narrowed so
// tests can stub the provider without compiling a real chain.
type runner interface {
	Invoke(ctx context.Context, input map[string]any, opts ...compose.Option) (*schema.Message, error)
	Stream(ctx context.Context, input map[string]any, opts ...compose.Option) (*schema.StreamReader[*schema.Message], error)
}

// Session is the handle for one provider-side conversation: the compiled chain
// plus the accumulated history the provider sees on every turn. Losing the
// session loses that context.
type Session struct {
	run     runner
	system  string
	history []*schema.Message
}

func (s *Session) input(query string) map[string]any {
	history := s.history
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	return map[string]any{
		"system":  s.system,
		"history": append([]*schema.Message(nil), history...),
		"query":   query,
	}
}

func (s *Session) remember(query, reply string) {
	s.history = append(s.history,
		schema.UserMessage(query),
		schema.AssistantMessage(reply, nil),
	)
}

// Holder owns at most one active Session and (re)creates it on demand.
type Holder struct {
	mu         sync.Mutex
	cfg        config.AIConfig
	persona    Persona
	build      func(ctx context.Context) (runner, error)
	session    *Session
	generation int
}

// NewHolder wires a Holder for the configured provider and the default persona.
func NewHolder(cfg config.AIConfig) *Holder {
	h := &Holder{cfg: cfg, persona: DefaultPersona()}
	h.build = h.buildChain
	return h
}

// EnsureSession returns the current session, creating a fresh provider-side
// conversation when none exists. Fails with ErrMissingCredential when the
// provider credential is absent.
func (h *Holder) EnsureSession(ctx context.Context) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session != nil {
		return h.session, nil
	}

	if !h.cfg.Enabled() {
		return nil, ErrMissingCredential
	}

	run, err := h.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider session: %w", err)
	}

	h.session = &Session{run: run, system: h.persona.SystemInstruction()}
	h.generation++
	log.Printf("[genie] fresh provider session created (generation=%d)", h.generation)
	return h.session, nil
}

// Invalidate discards the stored session unconditionally. The next turn starts
// a brand-new provider-side conversation with no memory of prior turns.
func (h *Holder) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = nil
}

// Generation reports how many sessions have been constructed so far.
func (h *Holder) Generation() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.generation
}

func (h *Holder) buildChain(ctx context.Context) (runner, error) {
	chatModel, err := h.cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return runnable, nil
}
