// Package batch builds batch API input files.
//
// An Assembler combines a common request, an optional prompt source and one
// Instance into a validated request body. A Writer session appends one JSONL
// line per entry to its destination, flushing each line before the next
// instance is assembled, and enforces custom_id uniqueness, the
// single-endpoint rule and (in strict mode) the file size and request count
// limits before a line is committed.
//
//	w, err := batch.Open("out/requests.jsonl")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	tmpl := prompt.NewTemplate(prompt.System("You are a {role}."), prompt.User("{question}"))
//	err = w.AddTemplated(tmpl, request.NewChatCompletions("gpt-4.1"),
//	    batch.TemplateInstance{ID: "1", Values: map[string]string{"role": "chef", "question": "Rice?"}},
//	)
//
// Custom ids default to "request-<instance id>"; use WithCustomIDFunc with
// PrefixedIDs or UUIDIDs to change the scheme, or set CustomID on an instance.
package batch
