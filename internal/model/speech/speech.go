package speech

import "time"

// TTSRequest asks the synthesis backend to voice one utterance.
type TTSRequest struct {
	Text     string  `json:"text"`
	Voice    string  `json:"voice"`
	Rate     float32 `json:"rate"`     // speaking speed ratio, 1.0 is neutral
	Pitch    float32 `json:"pitch"`    // pitch ratio, 1.0 is neutral
	Format   string  `json:"format"`   // mp3, wav, ...
	Language string  `json:"language"` // it-IT, en-US, ...
}

// TTSResponse carries the synthesized audio.
type TTSResponse struct {
	AudioData []byte    `json:"-"`
	Format    string    `json:"format"`
	Voice     string    `json:"voice"`
	Duration  int64     `json:"duration"` // milliseconds
	RequestID string    `json:"requestId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
