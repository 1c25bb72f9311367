package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lampadamagica/genio/backend/internal/config"
	speechmodel "github.com/lampadamagica/genio/backend/internal/model/speech"
)

// TTSClient talks the synthesis backend's websocket protocol: one JSON request
// out, a sequence of JSON frames back, each carrying a base64 audio chunk. A
// negative sequence number marks the final frame.
type TTSClient struct {
	cfg    config.SpeechConfig
	dialer *websocket.Dialer
}

// NewTTSClient builds the websocket synthesis client.
func NewTTSClient(cfg config.SpeechConfig) *TTSClient {
	return &TTSClient{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 30 * time.Second,
		},
	}
}

type ttsRequest struct {
	ReqID       string         `json:"reqid"`
	Speaker     string         `json:"speaker"`
	Text        string         `json:"text"`
	Language    string         `json:"language,omitempty"`
	AudioParams ttsAudioParams `json:"audio_params"`
}

type ttsAudioParams struct {
	Format     string  `json:"format"`
	SampleRate int     `json:"sample_rate"`
	SpeedRatio float32 `json:"speed_ratio,omitempty"`
	PitchRatio float32 `json:"pitch_ratio,omitempty"`
}

type ttsServerFrame struct {
	ReqID    string `json:"reqid"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Sequence int    `json:"sequence"`
	Data     string `json:"data"`
	Addition struct {
		Duration string `json:"duration,omitempty"`
	} `json:"addition,omitempty"`
}

// Synthesize voices one utterance and returns the whole audio buffer.
func (c *TTSClient) Synthesize(ctx context.Context, req *speechmodel.TTSRequest) (*speechmodel.TTSResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("TTS text is empty")
	}
	if c.cfg.BaseURL == "" {
		return nil, fmt.Errorf("speech backend URL not configured")
	}
	if c.cfg.AppID == "" || c.cfg.AccessToken == "" {
		return nil, fmt.Errorf("speech credentials missing: set SPEECH_APP_ID and SPEECH_ACCESS_TOKEN")
	}

	header := http.Header{}
	header.Set("X-Api-App-Key", c.cfg.AppID)
	header.Set("X-Api-Access-Key", c.cfg.AccessToken)
	header.Set("X-Api-Connect-Id", uuid.NewString())

	conn, resp, err := c.dialer.DialContext(ctx, c.cfg.BaseURL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to TTS websocket: %w", err)
	}
	defer conn.Close()

	if resp != nil {
		if logid := resp.Header.Get("X-Tt-Logid"); logid != "" {
			log.Printf("[tts] connected with logid: %s", logid)
		}
	}

	// Close the connection when the context dies so a blocked read unwinds.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	format := req.Format
	if format == "" {
		format = c.cfg.Format
	}

	payload := ttsRequest{
		ReqID:    uuid.NewString(),
		Speaker:  req.Voice,
		Text:     req.Text,
		Language: req.Language,
		AudioParams: ttsAudioParams{
			Format:     format,
			SampleRate: 24000,
			SpeedRatio: req.Rate,
			PitchRatio: req.Pitch,
		},
	}

	if err := conn.WriteJSON(payload); err != nil {
		return nil, fmt.Errorf("failed to send TTS request: %w", err)
	}

	var (
		audio    []byte
		reqID    string
		duration int64
	)

	for {
		_, data, readErr := conn.ReadMessage()
		if readErr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to read TTS frame: %w", readErr)
		}

		var frame ttsServerFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			return nil, fmt.Errorf("failed to decode TTS frame: %w", err)
		}

		if frame.Code != 0 && frame.Code != 3000 {
			return nil, fmt.Errorf("TTS API error %d: %s", frame.Code, frame.Message)
		}

		if frame.ReqID != "" {
			reqID = frame.ReqID
		}
		if frame.Addition.Duration != "" {
			if parsed, err := time.ParseDuration(frame.Addition.Duration + "ms"); err == nil {
				duration = parsed.Milliseconds()
			}
		}

		if frame.Data != "" {
			chunk, decodeErr := base64.StdEncoding.DecodeString(frame.Data)
			if decodeErr != nil {
				return nil, fmt.Errorf("failed to decode audio chunk: %w", decodeErr)
			}
			audio = append(audio, chunk...)
		}

		if frame.Sequence < 0 {
			break
		}
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("TTS audio is empty")
	}

	return &speechmodel.TTSResponse{
		AudioData: audio,
		Format:    format,
		Voice:     req.Voice,
		Duration:  duration,
		RequestID: reqID,
		CreatedAt: time.Now().UTC(),
	}, nil
}
