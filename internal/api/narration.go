package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/inkwellhq/inkwell-web/config"
	"github.com/inkwellhq/inkwell-web/internal/services"
	"github.com/inkwellhq/inkwell-web/internal/tts"
)

// NarrationHandler reads chapter prose aloud via the configured TTS
// engine
type NarrationHandler struct {
	ttsClient tts.Tts
	books     *services.BookService
	voice     tts.Voice
}

type NarrationRequest struct {
	ChapterID int    `json:"chapter_id"`
	Text      string `json:"text"`
	Tone      string `json:"tone"`
}

func NewNarrationHandler(cfg *config.NarrationConfig, books *services.BookService) (*NarrationHandler, error) {
	var client tts.Tts
	var err error

	switch cfg.Type {
	case "google":
		client, err = tts.NewWebGoogleTTSClientWithCredentials(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
	default:
		client = tts.NewDummyTts()
	}

	voice := tts.Voice{Engine: cfg.Type, Model: cfg.Voice}
	if voice.Model == "" {
		voice.Model = "en-US-Chirp-HD-F"
	}

	return &NarrationHandler{
		ttsClient: client,
		books:     books,
		voice:     voice,
	}, nil
}

// POST /api/v1/narration/speak - Generate and stream narration audio
func (nh *NarrationHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req NarrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	text := req.Text
	tone := req.Tone
	if req.ChapterID != 0 {
		chapter, err := nh.books.GetChapter(req.ChapterID)
		if err != nil {
			http.Error(w, "Chapter not found", http.StatusNotFound)
			return
		}
		if text == "" {
			text = chapter.Content
		}
		if tone == "" {
			if book, err := nh.books.GetBook(chapter.BookID); err == nil {
				tone = book.Genre
			}
		}
	}

	if text == "" {
		http.Error(w, "Text is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	webTTS, ok := nh.ttsClient.(tts.WebTTS)
	if !ok {
		http.Error(w, "Narration engine doesn't support audio generation", http.StatusInternalServerError)
		return
	}

	audioData, err := webTTS.GenerateAudio(ctx, text, tone, nh.voice)
	if err != nil {
		http.Error(w, "Failed to generate narration: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Stream MP3 audio to browser
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache")

	if _, err := w.Write(audioData); err != nil {
		http.Error(w, "Failed to stream audio", http.StatusInternalServerError)
		return
	}
}

func RegisterNarrationRoutes(r *mux.Router, cfg *config.NarrationConfig, books *services.BookService) {
	if !cfg.Enabled {
		return
	}

	handler, err := NewNarrationHandler(cfg, books)
	if err != nil {
		// Missing Google credentials shouldn't take the app down;
		// narration is simply unavailable
		return
	}

	r.HandleFunc("/narration/speak", handler.Speak).Methods("POST")
}
