package request

import (
	openai "github.com/sashabaranov/go-openai"
)

// Endpoint is a batch API endpoint path.
type Endpoint string

// Endpoints accepted by the batch API.
const (
	EndpointChatCompletions Endpoint = Endpoint(openai.BatchEndpointChatCompletions)
	EndpointResponses       Endpoint = "/v1/responses"
	EndpointEmbeddings      Endpoint = Endpoint(openai.BatchEndpointEmbeddings)
)

// KnownEndpoints returns the accepted endpoints in lexical order.
func KnownEndpoints() []Endpoint {
	return []Endpoint{EndpointChatCompletions, EndpointEmbeddings, EndpointResponses}
}

// Known reports whether e is an accepted endpoint.
func (e Endpoint) Known() bool {
	switch e {
	case EndpointChatCompletions, EndpointResponses, EndpointEmbeddings:
		return true
	}
	return false
}

func (e Endpoint) String() string { return string(e) }

// Kind discriminates the request variants.
type Kind string

const (
	KindChatCompletions Kind = "chat_completions"
	KindResponses       Kind = "responses"
	KindEmbeddings      Kind = "embeddings"
)

// Method is the only HTTP method the batch API accepts for an entry.
const Method = "POST"
