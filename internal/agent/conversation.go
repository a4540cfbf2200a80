package agent

import "github.com/cardenasjm/dispo/internal/llm"

// Conversation is the append-only ordered message log for one question.
// Messages are never reordered, truncated or mutated after being appended;
// the log lives only for the duration of a single Ask call.
type Conversation struct {
	messages []llm.Message
}

// NewConversation seeds the log with the user's question.
func NewConversation(question string) *Conversation {
	return &Conversation{
		messages: []llm.Message{{Role: llm.RoleUser, Content: question}},
	}
}

// Append adds one message to the end of the log.
func (c *Conversation) Append(m llm.Message) {
	c.messages = append(c.messages, m)
}

// Messages returns the ordered log as sent to the model.
func (c *Conversation) Messages() []llm.Message {
	return c.messages
}

// Len returns the number of messages appended so far.
func (c *Conversation) Len() int {
	return len(c.messages)
}
