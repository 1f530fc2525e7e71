package writing

import (
	"strings"

	"github.com/schollz/closestmatch"
)

// StyleTemplate carries the guidance injected into generation prompts
// for a genre
type StyleTemplate struct {
	Genre    string `json:"genre"`
	Voice    string `json:"voice"`
	Guidance string `json:"guidance"`
}

var styleTemplates = []StyleTemplate{
	{
		Genre:    "fantasy",
		Voice:    "immersive third person",
		Guidance: "Include detailed world-building, a consistent magic system, and sensory descriptions of unfamiliar places.",
	},
	{
		Genre:    "science-fiction",
		Voice:    "precise, forward-looking",
		Guidance: "Ground speculative technology in plausible detail and let its consequences drive character decisions.",
	},
	{
		Genre:    "mystery",
		Voice:    "measured, observational",
		Guidance: "Plant clues fairly, control information flow, and keep every revelation earned.",
	},
	{
		Genre:    "romance",
		Voice:    "warm, interior",
		Guidance: "Center the emotional arc between the leads and give obstacles real stakes.",
	},
	{
		Genre:    "thriller",
		Voice:    "urgent, close third person",
		Guidance: "Keep scenes short and propulsive, end chapters on open questions, and escalate steadily.",
	},
	{
		Genre:    "nonfiction",
		Voice:    "clear, authoritative",
		Guidance: "Organize around one idea per section, support claims with concrete examples, and avoid jargon.",
	},
	{
		Genre:    "fiction",
		Voice:    "natural third person",
		Guidance: "Maintain consistent point of view and tense, with rich description and engaging dialogue.",
	},
}

func genreMatcher() *closestmatch.ClosestMatch {
	genres := []string{}
	for _, t := range styleTemplates {
		genres = append(genres, t.Genre)
	}

	return closestmatch.New(genres, []int{2})
}

// ResolveTemplate maps a free-form genre string to the nearest style
// template. Unrecognizable input falls back to general fiction.
func ResolveTemplate(genre string) StyleTemplate {
	genre = strings.ToLower(strings.TrimSpace(genre))
	if genre == "" {
		return templateByGenre("fiction")
	}

	for _, t := range styleTemplates {
		if t.Genre == genre {
			return t
		}
	}

	if match := genreMatcher().Closest(genre); match != "" {
		return templateByGenre(match)
	}
	return templateByGenre("fiction")
}

// Templates returns the full style catalog
func Templates() []StyleTemplate {
	out := make([]StyleTemplate, len(styleTemplates))
	copy(out, styleTemplates)
	return out
}

func templateByGenre(genre string) StyleTemplate {
	for _, t := range styleTemplates {
		if t.Genre == genre {
			return t
		}
	}
	return styleTemplates[len(styleTemplates)-1]
}
