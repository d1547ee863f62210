// Package request models the request bodies accepted by the batch API
// endpoints: chat completions, responses and embeddings.
//
// Each variant implements the sealed Request interface. Field constraints
// (sampling ranges, token limits, enum values) are checked explicitly by
// ValidateFields; Validate additionally requires the content slot of the
// endpoint (messages, input or prompt) to be filled.
//
// A common request is shared across a batch and specialised per item with
// Merge, which overlays per-item options on a copy:
//
//	common := request.NewChatCompletions("gpt-4.1")
//	common.Temperature = util.Ptr(0.2)
//	item, err := request.Merge(common, map[string]any{"temperature": 0.9})
//
// Structured output schemas are attached with SetOutputSchema, or derived
// from a Go type with SetOutputType, which uses SchemaFor and StrictSchema.
package request
