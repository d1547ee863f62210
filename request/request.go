package request

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kbukum/openbatch/prompt"
	"github.com/kbukum/openbatch/validation"
)

// Request is a request body for one batch endpoint. It is implemented by
// *ChatCompletionsRequest, *ResponsesRequest and *EmbeddingsRequest only.
type Request interface {
	Kind() Kind
	Endpoint() Endpoint
	Model() string
	// ValidateFields checks range and enum constraints that do not depend on
	// instance content.
	ValidateFields() error
	// Validate runs ValidateFields and checks the body carries the content
	// its endpoint requires.
	Validate() error
	// Clone returns a deep copy.
	Clone() Request
	sealed()
}

// DefaultModel is used when a request is built without a model.
const DefaultModel = "gpt-4.1"

var (
	serviceTiers = []string{
		string(openai.ServiceTierAuto),
		string(openai.ServiceTierDefault),
		string(openai.ServiceTierFlex),
		string(openai.ServiceTierPriority),
	}
	reasoningEfforts = []string{"minimal", "low", "medium", "high"}
	verbosities      = []string{"low", "medium", "high"}
)

// GenerationOptions are the sampling and routing parameters shared by the
// text generation endpoints.
type GenerationOptions struct {
	Tools             []any             `json:"tools,omitempty"`
	ToolChoice        any               `json:"tool_choice,omitempty"`
	ParallelToolCalls *bool             `json:"parallel_tool_calls,omitempty"`
	Temperature       *float64          `json:"temperature,omitempty"`
	TopP              *float64          `json:"top_p,omitempty"`
	TopLogprobs       *int              `json:"top_logprobs,omitempty"`
	ServiceTier       string            `json:"service_tier,omitempty"`
	Store             *bool             `json:"store,omitempty"`
	PromptCacheKey    string            `json:"prompt_cache_key,omitempty"`
	SafetyIdentifier  string            `json:"safety_identifier,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

func (o *GenerationOptions) check(v *validation.Validator) {
	v.FloatRange("temperature", o.Temperature, 0, 2).
		FloatRange("top_p", o.TopP, 0, 1).
		IntRange("top_logprobs", o.TopLogprobs, 0, 20).
		OneOf("service_tier", o.ServiceTier, serviceTiers)
}

func checkMessages(v *validation.Validator, field string, msgs []prompt.Message) {
	for i, m := range msgs {
		if !m.Role.Valid() {
			v.AddValueError(fmt.Sprintf("%s[%d].role", field, i), string(m.Role),
				"must be one of: "+strings.Join(prompt.Roles(), ", "))
		}
	}
}

// isEmptyInput reports whether an input slot holds nothing usable.
func isEmptyInput(in any) bool {
	switch x := in.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []string:
		return len(x) == 0
	case []prompt.Message:
		return len(x) == 0
	case []any:
		return len(x) == 0
	}
	return false
}
