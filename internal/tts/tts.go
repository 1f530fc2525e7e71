package tts

import "context"

// Voice identifies the narration engine and voice model to use
type Voice struct {
	Engine string `json:"engine"`
	Model  string `json:"model"`
}

type Tts interface {
	Speak(ctx context.Context, text, tone string, voice Voice) error
	Name() string
}

// WebTTS interface for generating audio data instead of playing
type WebTTS interface {
	Tts
	GenerateAudio(ctx context.Context, text, tone string, voice Voice) ([]byte, error)
}

// Factory function for creating TTS clients
func NewWebGoogleTTS() (Tts, error) {
	return NewWebGoogleTTSClient()
}
