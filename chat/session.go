package chat

import (
	"context"
	"strings"
	"sync"

	"keyterm-chat-client/api"
	"keyterm-chat-client/utils"
)

// History receives every message appended to the thread so it can be
// persisted locally. Persistence failures are logged, never fatal.
type History interface {
	Append(sender, text string) error
}

// Session owns the conversation thread, the staged file and the
// in-flight send state. Sends are a two-phase action: a tentative
// optimistic append, then either confirm (reply recorded, file cleared)
// or compensate (apology recorded, optimistic message retained).
type Session struct {
	client  api.Assistant
	history History
	logger  *utils.Logger

	conversation *Conversation

	mu       sync.Mutex
	awaiting bool
	staged   *api.FileUpload

	// OnUpdate is invoked after every thread or state change
	OnUpdate func()
}

// NewSession creates a send session backed by the given client.
// history may be nil when no local persistence is wanted.
func NewSession(client api.Assistant, history History, logger *utils.Logger) *Session {
	return &Session{
		client:       client,
		history:      history,
		logger:       logger,
		conversation: NewConversation(),
	}
}

// Conversation returns the thread owned by this session
func (s *Session) Conversation() *Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation
}

// Reset starts a fresh, empty thread. Refused while a send is in flight.
func (s *Session) Reset() bool {
	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return false
	}
	s.conversation = NewConversation()
	s.mu.Unlock()

	s.notify()
	return true
}

// Awaiting reports whether a send is in flight. The input control is
// disabled and a typing row shown while this is true.
func (s *Session) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// AttachFile stages a file for the next send, replacing any previous one
func (s *Session) AttachFile(file *api.FileUpload) {
	s.mu.Lock()
	s.staged = file
	s.mu.Unlock()
	s.notify()
}

// StagedFile returns the currently staged file, or nil
func (s *Session) StagedFile() *api.FileUpload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staged
}

// ClearStagedFile removes the staged file without sending it
func (s *Session) ClearStagedFile() {
	s.mu.Lock()
	s.staged = nil
	s.mu.Unlock()
	s.notify()
}

// Send submits the text and any staged file to the backend. It blocks
// until the backend answers, so callers run it off the UI thread.
// Returns false when nothing was sent (empty input with no staged file,
// or another send already in flight).
func (s *Session) Send(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)

	staged, ok := s.begin(text)
	if !ok {
		return false
	}

	reply, err := s.client.SendMessage(ctx, text, staged)
	if err != nil {
		s.compensate(err)
		return true
	}

	s.confirm(reply)
	return true
}

// begin performs the tentative phase: gate on in-flight sends, then
// append the user message optimistically
func (s *Session) begin(text string) (*api.FileUpload, bool) {
	s.mu.Lock()
	if s.awaiting {
		s.mu.Unlock()
		return nil, false
	}
	staged := s.staged
	if text == "" && staged == nil {
		s.mu.Unlock()
		return nil, false
	}
	s.awaiting = true
	s.mu.Unlock()

	s.conversation.AppendUserMessage(text)
	s.persist(SenderUser, text)
	s.notify()

	return staged, true
}

// confirm records the reply and clears the staged file
func (s *Session) confirm(reply string) {
	s.conversation.RecordReply(reply)
	s.persist(SenderBot, reply)

	s.mu.Lock()
	s.staged = nil
	s.awaiting = false
	s.mu.Unlock()

	s.notify()
}

// compensate records the apology message. The optimistic user message
// stays in the thread and the staged file stays staged.
func (s *Session) compensate(err error) {
	s.logger.Error("Send failed: %v", err)

	s.conversation.RecordFailure()
	s.persist(SenderBot, FailureReply)

	s.mu.Lock()
	s.awaiting = false
	s.mu.Unlock()

	s.notify()
}

func (s *Session) persist(sender Sender, text string) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(string(sender), text); err != nil {
		s.logger.Warn("Failed to persist message: %v", err)
	}
}

func (s *Session) notify() {
	if s.OnUpdate != nil {
		s.OnUpdate()
	}
}
