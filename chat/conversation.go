package chat

import "sync"

// Sender identifies who authored a message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// FailureReply is appended in place of a reply when a send fails
const FailureReply = "Sorry, something went wrong."

// Message is a single entry in the conversation thread
type Message struct {
	Sender Sender
	Text   string
}

// Conversation is an ordered, append-only list of messages.
// Display order equals chronological order; past messages are never
// edited or removed.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
}

// NewConversation creates an empty conversation
func NewConversation() *Conversation {
	return &Conversation{}
}

// AppendUserMessage appends a user message immediately (optimistic)
func (c *Conversation) AppendUserMessage(text string) {
	c.append(Message{Sender: SenderUser, Text: text})
}

// RecordReply appends a bot message after a successful send
func (c *Conversation) RecordReply(text string) {
	c.append(Message{Sender: SenderBot, Text: text})
}

// RecordFailure appends the fixed apology message after a failed send.
// The preceding optimistic user message is retained, not rolled back.
func (c *Conversation) RecordFailure() {
	c.append(Message{Sender: SenderBot, Text: FailureReply})
}

// Seed preloads past messages, e.g. restored from local history
func (c *Conversation) Seed(messages []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, messages...)
}

// Messages returns a copy of the thread in display order
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the thread
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *Conversation) append(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}
