// Package simulated provides an offline LLM stand-in so the application
// works without a model server. Output is deterministic for a given
// prompt, which also makes generation testable.
package simulated

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

var openers = []string{
	"The morning light fell across the desk in long, uneven bars.",
	"Nobody remembered exactly when the trouble had started.",
	"It began, as most things do, with a small and ordinary decision.",
	"The letter arrived on a Tuesday, which later seemed important.",
	"There are towns that forget their own history, and this was one of them.",
}

var bridges = []string{
	"What followed was not what anyone had planned.",
	"The details mattered more than they appeared to.",
	"Each step forward revealed two questions that had no answer yet.",
	"For a while, the work went on in silence.",
	"Something in the pattern refused to line up.",
}

var closers = []string{
	"By the end, the shape of the thing was finally visible.",
	"It would take more than one attempt to get it right.",
	"The next part of the story would have to wait for morning.",
	"And that, for the moment, was enough.",
	"There was still ground to cover, but the direction was set.",
}

type Client struct{}

func NewClient() *Client {
	return &Client{}
}

// GenerateResponse produces placeholder prose seeded from the prompt
func (c *Client) GenerateResponse(_ context.Context, prompt string) (string, error) {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	seed := int(h.Sum32())

	var b strings.Builder
	b.WriteString(openers[seed%len(openers)])
	b.WriteString(" ")
	b.WriteString(bridges[(seed/7)%len(bridges)])
	b.WriteString(" ")
	b.WriteString(closers[(seed/31)%len(closers)])

	if topic := firstLine(prompt); topic != "" {
		return fmt.Sprintf("%s\n\n%s", b.String(), "(Simulated draft for: "+topic+")"), nil
	}
	return b.String(), nil
}

// IsModelAvailable always succeeds; there is no model to check
func (c *Client) IsModelAvailable(_ context.Context) error {
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}
