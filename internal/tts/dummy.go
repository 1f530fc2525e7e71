package tts

import (
	"context"

	"github.com/inkwellhq/inkwell-web/internal/logger"
)

type DummyTts struct {
}

func NewDummyTts() *DummyTts {
	return &DummyTts{}
}

func (d *DummyTts) Speak(_ context.Context, text, tone string, voice Voice) error {
	logger.New().Debug("no tts configured. ignoring narration request")
	return nil
}

func (d *DummyTts) Name() string {
	return "dummy"
}
