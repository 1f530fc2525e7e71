package tts

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/inkwellhq/inkwell-web/internal/logger"
)

type WebGoogleTTS struct {
	client *texttospeech.Client
	logger *logger.Log
}

// NewWebGoogleTTSClient picks up credentials from the environment
// (GOOGLE_APPLICATION_CREDENTIALS or ambient ADC)
func NewWebGoogleTTSClient() (*WebGoogleTTS, error) {
	return NewWebGoogleTTSClientWithCredentials("")
}

// NewWebGoogleTTSClientWithCredentials uses an explicit service account
// key file instead of ambient credentials
func NewWebGoogleTTSClientWithCredentials(credentialsFile string) (*WebGoogleTTS, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google TTS client: %w", err)
	}

	return &WebGoogleTTS{
		client: client,
		logger: logger.New(),
	}, nil
}

// Extract language code from voice model name (e.g., "en-US-Chirp-HD-F" -> "en-US")
func (g *WebGoogleTTS) extractLanguageCode(modelName string) string {
	parts := strings.Split(modelName, "-")
	if len(parts) >= 2 {
		return fmt.Sprintf("%s-%s", parts[0], parts[1])
	}
	return "en-US"
}

// GenerateAudio synthesizes chapter narration without playing it
func (g *WebGoogleTTS) GenerateAudio(ctx context.Context, text, tone string, voice Voice) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	// Markdown markers read badly aloud
	cleanText := strings.NewReplacer("#", "", "*", "", "[", "", "]", "").Replace(text)

	languageCode := g.extractLanguageCode(voice.Model)

	req := &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{
			InputSource: &ttspb.SynthesisInput_Text{Text: cleanText},
		},
		Voice: &ttspb.VoiceSelectionParams{
			LanguageCode: languageCode,
			Name:         voice.Model,
		},
		AudioConfig: &ttspb.AudioConfig{
			AudioEncoding:   ttspb.AudioEncoding_MP3,
			SpeakingRate:    g.getSpeakingRateForTone(tone),
			Pitch:           g.getPitchForTone(tone),
			VolumeGainDb:    0.0,
			SampleRateHertz: 22050,
		},
	}

	g.logger.Debug(fmt.Sprintf("Generating narration with voice: %s, language: %s, tone: %s",
		voice.Model, languageCode, tone))

	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	if len(resp.AudioContent) == 0 {
		return nil, fmt.Errorf("empty audio content received from Google TTS")
	}

	g.logger.Debug(fmt.Sprintf("Generated %d bytes of MP3 audio", len(resp.AudioContent)))
	return resp.AudioContent, nil
}

// Speak implementation for compatibility (generates and discards audio)
func (g *WebGoogleTTS) Speak(ctx context.Context, text, tone string, voice Voice) error {
	_, err := g.GenerateAudio(ctx, text, tone, voice)
	return err
}

func (g *WebGoogleTTS) Name() string {
	return "Google Cloud Text-to-Speech (Web)"
}

func (g *WebGoogleTTS) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Narration tone comes from the book's genre; pacing and pitch follow it
func (g *WebGoogleTTS) getSpeakingRateForTone(tone string) float64 {
	switch strings.ToLower(tone) {
	case "thriller", "action":
		return 1.10
	case "mystery", "suspense":
		return 0.90
	case "romance":
		return 0.95
	case "nonfiction", "technical":
		return 1.0
	default:
		return 1.0
	}
}

func (g *WebGoogleTTS) getPitchForTone(tone string) float64 {
	switch strings.ToLower(tone) {
	case "thriller", "action":
		return -1.0
	case "mystery", "suspense":
		return -1.5
	case "romance":
		return 1.0
	default:
		return 0.0
	}
}
