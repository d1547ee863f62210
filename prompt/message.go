package prompt

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Role is the author of a message in a conversation.
type Role string

// Recognised roles.
const (
	RoleSystem    Role = openai.ChatMessageRoleSystem
	RoleUser      Role = openai.ChatMessageRoleUser
	RoleAssistant Role = openai.ChatMessageRoleAssistant
	RoleTool      Role = openai.ChatMessageRoleTool
	RoleDeveloper Role = openai.ChatMessageRoleDeveloper
)

var knownRoles = map[Role]struct{}{
	RoleSystem:    {},
	RoleUser:      {},
	RoleAssistant: {},
	RoleTool:      {},
	RoleDeveloper: {},
}

// Valid reports whether r is a recognised role.
func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

// Roles returns the recognised roles as strings, in a fixed order.
func Roles() []string {
	return []string{string(RoleSystem), string(RoleDeveloper), string(RoleUser), string(RoleAssistant), string(RoleTool)}
}

// Message is a single conversation turn.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// System returns a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User returns a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant returns an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Validate checks the role is recognised.
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("unknown role %q", m.Role)
	}
	return nil
}
