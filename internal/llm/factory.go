package llm

import (
	"fmt"

	"github.com/inkwellhq/inkwell-web/config"
	"github.com/inkwellhq/inkwell-web/internal/llm/ollama"
	"github.com/inkwellhq/inkwell-web/internal/llm/openai"
	"github.com/inkwellhq/inkwell-web/internal/llm/simulated"
)

type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderSimulated Provider = "simulated"
)

// NewLLMClient creates a new LLM client based on the configuration
func NewLLMClient(cfg *config.Config) (LLM, error) {
	switch Provider(cfg.LLM.Provider) {
	case ProviderOllama:
		return ollama.NewClient(&cfg.Ollama)
	case ProviderOpenAI:
		return openai.NewClient(&cfg.OpenAI)
	case ProviderSimulated:
		return simulated.NewClient(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
