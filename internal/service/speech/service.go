package speech

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/lampadamagica/genio/backend/internal/config"
	speechmodel "github.com/lampadamagica/genio/backend/internal/model/speech"
)

// Synthesizer abstracts the synthesis backend so tests can stub the websocket
// client.
type Synthesizer interface {
	Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error)
}

// Service voices genie replies: clean the text, pick the voice profile, run the
// synthesis. One utterance at a time; a new Speak or an explicit Cancel aborts
// the in-flight one.
type Service struct {
	cfg     config.SpeechConfig
	synth   Synthesizer
	catalog []Voice

	mu        sync.Mutex
	cancel    context.CancelFunc
	utterance *speechmodel.TTSResponse
}

// NewService builds the speech service over the websocket TTS client.
func NewService(cfg config.SpeechConfig) *Service {
	return &Service{
		cfg:     cfg,
		synth:   NewTTSClient(cfg),
		catalog: DefaultCatalog(),
	}
}

// Profile resolves the voice the genie speaks with. A configured voice id wins;
// otherwise selection falls back to the catalog rules for the language.
func (s *Service) Profile() (Profile, bool) {
	if s.cfg.Voice != "" {
		for _, v := range s.catalog {
			if v.ID == s.cfg.Voice {
				return Profile{Voice: v, Pitch: naturalPitch, Rate: s.cfg.Rate}, true
			}
		}
	}

	profile, ok := ProfileFor(s.catalog, s.cfg.Language)
	if !ok {
		return Profile{}, false
	}
	profile.Rate = s.cfg.Rate
	return profile, true
}

// Speak voices one reply and keeps the result as the current utterance for the
// widget to fetch. Cancelling (or speaking again) aborts the previous run.
func (s *Service) Speak(ctx context.Context, text string) error {
	cleaned := CleanUtterance(text)
	if cleaned == "" {
		return nil
	}

	profile, ok := s.Profile()
	if !ok {
		return fmt.Errorf("no voice available for language %s", s.cfg.Language)
	}

	speakCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	response, err := s.synth.Synthesize(speakCtx, &speechmodel.TTSRequest{
		Text:     cleaned,
		Voice:    profile.Voice.ID,
		Rate:     profile.Rate,
		Pitch:    profile.Pitch,
		Format:   s.cfg.Format,
		Language: s.cfg.Language,
	})
	if err != nil {
		return fmt.Errorf("failed to synthesize utterance: %w", err)
	}

	s.mu.Lock()
	s.utterance = response
	s.mu.Unlock()

	log.Printf("[speech] utterance ready: voice=%s bytes=%d", profile.Voice.ID, len(response.AudioData))
	return nil
}

// Cancel aborts the in-flight synthesis, if any. Speaking is restartable.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.utterance = nil
}

// Utterance returns the most recent synthesized reply, if one is ready.
func (s *Service) Utterance() (*speechmodel.TTSResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.utterance == nil {
		return nil, false
	}
	return s.utterance, true
}

// Synthesize serves direct synthesis requests from the HTTP surface, applying
// the same cleaning and voice defaults as Speak.
func (s *Service) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	cleaned := CleanUtterance(req.Text)
	if cleaned == "" {
		return nil, fmt.Errorf("nothing to speak after cleaning")
	}
	req.Text = cleaned

	if req.Voice == "" || req.Rate == 0 || req.Pitch == 0 {
		profile, ok := s.Profile()
		if !ok {
			return nil, fmt.Errorf("no voice available for language %s", s.cfg.Language)
		}
		if req.Voice == "" {
			req.Voice = profile.Voice.ID
		}
		if req.Rate == 0 {
			req.Rate = profile.Rate
		}
		if req.Pitch == 0 {
			req.Pitch = profile.Pitch
		}
	}
	if req.Language == "" {
		req.Language = s.cfg.Language
	}
	if req.Format == "" {
		req.Format = s.cfg.Format
	}

	return s.synth.Synthesize(ctx, req)
}
