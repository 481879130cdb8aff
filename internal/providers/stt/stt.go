package stt

import "context"

// Provider transcribes one complete utterance. language is a BCP-47 code
// ("th-TH", "en-US"); confidence is in [0,1] and 0 when unknown.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}

var _ Provider = (*GoogleSpeech)(nil)
