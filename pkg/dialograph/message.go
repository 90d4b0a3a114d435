package dialograph

// Role identifies the author of a transcript message.
type Role string

// Transcript message roles.
const (
	// RoleSystem marks graph-authored text: node instructions and any
	// other steering the engine injects.
	RoleSystem Role = "system"

	// RoleUser marks text submitted by the end user.
	RoleUser Role = "user"

	// RoleAssistant marks model output, including turns where the model
	// selected an outcome.
	RoleAssistant Role = "assistant"

	// RoleToolResult marks the synthetic message the engine appends after
	// executing an outcome selection, closing the tool-call loop.
	RoleToolResult Role = "tool_result"
)

// Message is one transcript entry. The transcript is append-only: messages
// are never edited or removed once a turn commits, so it is a faithful
// audit record of the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`

	// Selection is set on assistant messages that picked an outcome and on
	// the tool-result messages acknowledging them.
	Selection *Selection `json:"selection,omitempty"`
}

// Selection records an outcome chosen through the selection tool. CallID
// ties an assistant's tool call to the tool-result message that answers it;
// the engine backfills a UUID when the provider omits one.
type Selection struct {
	Outcome string `json:"outcome"`
	CallID  string `json:"call_id"`
}
