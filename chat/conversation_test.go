package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationOrdering(t *testing.T) {
	conv := NewConversation()

	conv.AppendUserMessage("first")
	conv.RecordReply("second")
	conv.AppendUserMessage("third")
	conv.RecordFailure()

	messages := conv.Messages()
	assert.Equal(t, []Message{
		{SenderUser, "first"},
		{SenderBot, "second"},
		{SenderUser, "third"},
		{SenderBot, FailureReply},
	}, messages)
}

func TestConversationSeed(t *testing.T) {
	conv := NewConversation()
	conv.Seed([]Message{
		{SenderUser, "restored question"},
		{SenderBot, "restored answer"},
	})

	conv.AppendUserMessage("new question")

	assert.Equal(t, 3, conv.Len())
	assert.Equal(t, Message{SenderUser, "new question"}, conv.Messages()[2])
}

func TestMessagesReturnsCopy(t *testing.T) {
	conv := NewConversation()
	conv.AppendUserMessage("original")

	snapshot := conv.Messages()
	snapshot[0].Text = "mutated"

	assert.Equal(t, "original", conv.Messages()[0].Text)
}
