// Package prompt holds the conversation building blocks of a batch request
// and the placeholder renderer that turns a prompt template into concrete
// messages.
//
// A Template is an ordered list of messages whose content may reference
// named placeholders written as {name}. Render substitutes them from a
// mapping: a missing name is an error, a mapping key the template never
// references is reported back as unused so one mapping can be shared by
// several templates. Doubled braces ({{ and }}) produce literal braces and
// substituted values are never re-scanned.
//
//	tmpl := prompt.NewTemplate(
//	    prompt.System("You are a {role}."),
//	    prompt.User("{question}"),
//	)
//	out, err := tmpl.Format(map[string]string{"role": "chef", "question": "How to cook rice?"})
//
// A ReusablePrompt references a template stored by the remote service; it
// carries only its identifier, version and the variables it expects.
package prompt
