package screen

import (
	"context"
	"strings"

	"nextchamp/app/internal/domain"
)

// BotBackend is the slice of the API client the chat screen needs.
type BotBackend interface {
	ChatHistory(ctx context.Context, userID string) ([]domain.ChatEntry, error)
	AppendChat(ctx context.Context, userID string, entry domain.ChatEntry) error
}

// ChatScreen keeps the assistant conversation for one user: it loads the
// stored history and records new question/answer lines. The assistant's
// replies are produced elsewhere; this screen only persists and displays
// the transcript.
type ChatScreen struct {
	bot     BotBackend
	userID  string
	entries []domain.ChatEntry
}

func NewChatScreen(bot BotBackend, userID string) *ChatScreen {
	return &ChatScreen{bot: bot, userID: userID}
}

// Load fetches the stored transcript. A user without history gets an
// empty screen, not an error.
func (s *ChatScreen) Load(ctx context.Context) error {
	entries, err := s.bot.ChatHistory(ctx, s.userID)
	if err != nil {
		return err
	}
	s.entries = entries
	return nil
}

// RecordQuestion appends the user's question to the transcript.
func (s *ChatScreen) RecordQuestion(ctx context.Context, text string) error {
	return s.record(ctx, domain.ChatQuestion, text)
}

// RecordAnswer appends the assistant's reply to the transcript.
func (s *ChatScreen) RecordAnswer(ctx context.Context, text string) error {
	return s.record(ctx, domain.ChatAnswer, text)
}

func (s *ChatScreen) record(ctx context.Context, kind, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	entry := domain.ChatEntry{Type: kind, Statement: text}
	if err := s.bot.AppendChat(ctx, s.userID, entry); err != nil {
		return err
	}
	s.entries = append(s.entries, entry)
	return nil
}

// History returns the transcript accumulated so far, oldest first.
func (s *ChatScreen) History() []domain.ChatEntry {
	return s.entries
}
