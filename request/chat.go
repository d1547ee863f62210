package request

import (
	"maps"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kbukum/openbatch/prompt"
	"github.com/kbukum/openbatch/util"
	"github.com/kbukum/openbatch/validation"
)

// ChatCompletionsRequest is a /v1/chat/completions request body.
type ChatCompletionsRequest struct {
	ModelID  string           `json:"model"`
	Messages []prompt.Message `json:"messages,omitempty"`

	GenerationOptions

	FrequencyPenalty    *float64        `json:"frequency_penalty,omitempty"`
	PresencePenalty     *float64        `json:"presence_penalty,omitempty"`
	LogitBias           map[string]int  `json:"logit_bias,omitempty"`
	Logprobs            *bool           `json:"logprobs,omitempty"`
	MaxCompletionTokens *int            `json:"max_completion_tokens,omitempty"`
	Modalities          []string        `json:"modalities,omitempty"`
	N                   *int            `json:"n,omitempty"`
	Prediction          any             `json:"prediction,omitempty"`
	ReasoningEffort     string          `json:"reasoning_effort,omitempty"`
	ResponseFormat      *ResponseFormat `json:"response_format,omitempty"`
	Verbosity           string          `json:"verbosity,omitempty"`
	WebSearchOptions    any             `json:"web_search_options,omitempty"`
}

// ResponseFormat is the chat completions structured output setting.
type ResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *JSONSchemaFormat `json:"json_schema,omitempty"`
}

// JSONSchemaFormat carries a named schema for structured output.
type JSONSchemaFormat struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Schema      map[string]any `json:"schema"`
	Strict      bool           `json:"strict"`
}

// NewChatCompletions returns a chat completions request for model.
func NewChatCompletions(model string) *ChatCompletionsRequest {
	if model == "" {
		model = DefaultModel
	}
	return &ChatCompletionsRequest{ModelID: model}
}

func (*ChatCompletionsRequest) Kind() Kind         { return KindChatCompletions }
func (*ChatCompletionsRequest) Endpoint() Endpoint { return EndpointChatCompletions }
func (r *ChatCompletionsRequest) Model() string    { return r.ModelID }
func (*ChatCompletionsRequest) sealed()            {}

// SetMessages replaces the conversation.
func (r *ChatCompletionsRequest) SetMessages(msgs []prompt.Message) {
	r.Messages = append([]prompt.Message(nil), msgs...)
}

// SetOutputSchema requests structured output conforming to s.
func (r *ChatCompletionsRequest) SetOutputSchema(s OutputSchema) {
	r.ResponseFormat = &ResponseFormat{
		Type: string(openai.ChatCompletionResponseFormatTypeJSONSchema),
		JSONSchema: &JSONSchemaFormat{
			Name:        s.Name,
			Description: s.Description,
			Schema:      s.Schema,
			Strict:      s.Strict,
		},
	}
}

// SetOutputType derives a strict schema from v and attaches it.
func (r *ChatCompletionsRequest) SetOutputType(v any) error {
	s, err := SchemaFor(v)
	if err != nil {
		return err
	}
	r.SetOutputSchema(s)
	return nil
}

func (r *ChatCompletionsRequest) ValidateFields() error {
	v := validation.New()
	v.Required("model", r.ModelID)
	r.GenerationOptions.check(v)
	v.FloatRange("frequency_penalty", r.FrequencyPenalty, -2, 2).
		FloatRange("presence_penalty", r.PresencePenalty, -2, 2).
		Positive("max_completion_tokens", r.MaxCompletionTokens).
		IntMin("n", r.N, 1).
		OneOf("reasoning_effort", r.ReasoningEffort, reasoningEfforts).
		OneOf("verbosity", r.Verbosity, verbosities)
	if rf := r.ResponseFormat; rf != nil {
		v.OneOf("response_format.type", rf.Type, []string{
			string(openai.ChatCompletionResponseFormatTypeText),
			string(openai.ChatCompletionResponseFormatTypeJSONObject),
			string(openai.ChatCompletionResponseFormatTypeJSONSchema),
		})
		if rf.Type == string(openai.ChatCompletionResponseFormatTypeJSONSchema) {
			v.Custom(rf.JSONSchema != nil && rf.JSONSchema.Name != "", "response_format.json_schema.name", "is required")
		}
	}
	checkMessages(v, "messages", r.Messages)
	return v.Err()
}

func (r *ChatCompletionsRequest) Validate() error {
	if err := r.ValidateFields(); err != nil {
		return err
	}
	return validation.New().
		Custom(len(r.Messages) > 0, "messages", "is required for "+string(EndpointChatCompletions)).
		Err()
}

func (r *ChatCompletionsRequest) Clone() Request {
	c := *r
	c.Messages = append([]prompt.Message(nil), r.Messages...)
	c.GenerationOptions = r.GenerationOptions.clone()
	c.FrequencyPenalty = util.Clone(r.FrequencyPenalty)
	c.PresencePenalty = util.Clone(r.PresencePenalty)
	c.LogitBias = maps.Clone(r.LogitBias)
	c.Logprobs = util.Clone(r.Logprobs)
	c.MaxCompletionTokens = util.Clone(r.MaxCompletionTokens)
	c.Modalities = append([]string(nil), r.Modalities...)
	c.N = util.Clone(r.N)
	if r.ResponseFormat != nil {
		rf := *r.ResponseFormat
		if rf.JSONSchema != nil {
			js := *rf.JSONSchema
			rf.JSONSchema = &js
		}
		c.ResponseFormat = &rf
	}
	return &c
}

func (o GenerationOptions) clone() GenerationOptions {
	o.Tools = append([]any(nil), o.Tools...)
	o.ParallelToolCalls = util.Clone(o.ParallelToolCalls)
	o.Temperature = util.Clone(o.Temperature)
	o.TopP = util.Clone(o.TopP)
	o.TopLogprobs = util.Clone(o.TopLogprobs)
	o.Store = util.Clone(o.Store)
	o.Metadata = maps.Clone(o.Metadata)
	return o
}
