package conversation

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lampadamagica/genio/backend/internal/model/chat"
	"github.com/lampadamagica/genio/backend/internal/service/genie"
)

var (
	// ErrEmptyMessage rejects empty or whitespace-only input. No turn is appended.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrTurnInFlight rejects input while a previous turn is still awaiting its
	// response. At most one outstanding turn at a time.
	ErrTurnInFlight = errors.New("a turn is already awaiting its response")
)

// sideEffectTimeout bounds journal and speech work so a hung consumer can
// never pile up goroutines forever.
const sideEffectTimeout = 30 * time.Second

// Dispatcher drives one full turn against the provider session.
type Dispatcher interface {
	SendTurnStreaming(ctx context.Context, text string, onChunk func(string)) (string, error)
}

// Journal receives finished question/answer pairs, best effort.
type Journal interface {
	Record(ctx context.Context, question, answer string, failed bool) error
}

// Speaker voices finished genie replies and can be interrupted at any time.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Cancel()
}

// Service owns the ordered conversation, the single awaiting flag and the
// reconciliation of streamed chunks into the pending model turn.
type Service struct {
	dispatcher    Dispatcher
	journal       Journal
	speaker       Speaker
	greetingDelay time.Duration

	mu       sync.RWMutex
	turns    []chat.Turn
	awaiting bool
	active   bool

	sideEffects sync.WaitGroup
}

// NewService wires the conversation. journal and speaker may be nil when the
// corresponding boundary is not configured.
func NewService(dispatcher Dispatcher, greetingDelay time.Duration, journal Journal, speaker Speaker) *Service {
	return &Service{
		dispatcher:    dispatcher,
		journal:       journal,
		speaker:       speaker,
		greetingDelay: greetingDelay,
	}
}

// Activate starts the conversation the first time the lamp is rubbed. The
// greeting turn appears after the configured delay so the entry animation can
// play out first. Returns false when the lamp was already active.
func (s *Service) Activate() bool {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return false
	}
	s.active = true
	s.mu.Unlock()

	time.AfterFunc(s.greetingDelay, s.appendGreeting)
	return true
}

func (s *Service) appendGreeting() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, chat.Turn{
		ID:        uuid.NewString(),
		Speaker:   chat.SpeakerModel,
		Text:      genie.InitialGreeting,
		CreatedAt: time.Now().UTC(),
	})
}

// Submit runs one full user turn: append the user message, open the pending
// model turn, stream the reply into it chunk by chunk, finalize exactly once.
// onUpdate (optional) observes every reconciliation of the pending turn, in
// arrival order. The returned turn is the finalized model turn.
func (s *Service) Submit(ctx context.Context, text string, onUpdate func(chat.Turn)) (chat.Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Turn{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return chat.Turn{}, ErrTurnInFlight
	}

	now := time.Now().UTC()
	userTurn := chat.Turn{
		ID:        uuid.NewString(),
		Speaker:   chat.SpeakerUser,
		Text:      text,
		CreatedAt: now,
	}
	// The pending turn gets its own id: it is the reconciliation target and
	// must never collide with the user turn just appended.
	modelTurn := chat.Turn{
		ID:        uuid.NewString(),
		Speaker:   chat.SpeakerModel,
		Text:      chat.PendingPlaceholder,
		Pending:   true,
		CreatedAt: now,
	}
	s.turns = append(s.turns, userTurn, modelTurn)
	s.awaiting = true
	s.mu.Unlock()

	// The gate reopens on every exit path, success or failure.
	defer func() {
		s.mu.Lock()
		s.awaiting = false
		s.mu.Unlock()
	}()

	// If the user talks over the genie, the genie stops talking.
	if s.speaker != nil {
		s.speaker.Cancel()
	}

	final, err := s.dispatcher.SendTurnStreaming(ctx, text, func(accumulated string) {
		snapshot := s.applyChunk(modelTurn.ID, accumulated)
		if onUpdate != nil {
			onUpdate(snapshot)
		}
	})
	if err != nil {
		// No session could be created at all. The bubble still resolves in
		// character; the technical error goes to the caller, never the user.
		final = genie.ProviderErrorReply
	}

	// The dispatcher resolves provider failures to the fixed error reply
	// rather than raising them.
	failed := err != nil || final == genie.ProviderErrorReply

	resolved := s.finalize(modelTurn.ID, final)
	s.fanOut(text, final, failed)
	return resolved, err
}

// applyChunk overwrites the pending turn's text in place, preserving its id
// and position. No other turn is touched.
func (s *Service) applyChunk(turnID, text string) chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.turns {
		if s.turns[i].ID == turnID {
			s.turns[i].Text = text
			return s.turns[i]
		}
	}
	return chat.Turn{}
}

func (s *Service) finalize(turnID, text string) chat.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.turns {
		if s.turns[i].ID == turnID {
			s.turns[i].Text = text
			s.turns[i].Pending = false
			return s.turns[i]
		}
	}
	return chat.Turn{}
}

// fanOut notifies the side-effect consumers. Their failures are observed,
// logged and discarded; they never reach the conversation state.
func (s *Service) fanOut(question, answer string, failed bool) {
	if s.journal != nil {
		s.sideEffects.Add(1)
		go func() {
			defer s.sideEffects.Done()
			defer recoverSideEffect("journal")

			ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
			defer cancel()
			if err := s.journal.Record(ctx, question, answer, failed); err != nil {
				log.Printf("[conversation] journal record failed: %v", err)
			}
		}()
	}

	if s.speaker != nil {
		s.sideEffects.Add(1)
		go func() {
			defer s.sideEffects.Done()
			defer recoverSideEffect("speech")

			ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
			defer cancel()
			if err := s.speaker.Speak(ctx, answer); err != nil {
				log.Printf("[conversation] speech failed: %v", err)
			}
		}()
	}
}

// Drain waits for in-flight side effects, used on graceful shutdown.
func (s *Service) Drain() {
	s.sideEffects.Wait()
}

// Turns returns a copy of the conversation in insertion order.
func (s *Service) Turns() []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Turn, len(s.turns))
	copy(copied, s.turns)
	return copied
}

// Awaiting reports whether a turn is currently outstanding.
func (s *Service) Awaiting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.awaiting
}

// Active reports whether the lamp has been rubbed.
func (s *Service) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func recoverSideEffect(name string) {
	if r := recover(); r != nil {
		log.Printf("[conversation] %s consumer panicked: %v", name, r)
	}
}
