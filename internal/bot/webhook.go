// Package bot handles webhook updates and command dispatch for the chat
// frontend.
package bot

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vietddude/chatpulse/internal/core/domain"
)

// Update is one incoming webhook payload.
type Update struct {
	UpdateID int64          `json:"update_id"`
	Message  *UpdateMessage `json:"message"`
}

// UpdateMessage is the message portion of an update.
type UpdateMessage struct {
	MessageID int64      `json:"message_id"`
	From      UpdateUser `json:"from"`
	Chat      UpdateChat `json:"chat"`
	Date      int64      `json:"date"`
	Text      string     `json:"text"`
}

type UpdateUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type UpdateChat struct {
	ID int64 `json:"id"`
}

// ParseUpdate decodes one webhook body.
func ParseUpdate(r io.Reader) (*Update, error) {
	var upd Update
	if err := json.NewDecoder(r).Decode(&upd); err != nil {
		return nil, fmt.Errorf("decode update: %w", err)
	}
	if upd.Message == nil {
		return nil, fmt.Errorf("update %d has no message", upd.UpdateID)
	}
	return &upd, nil
}

// ToDomain converts an update into a stored message. The record gets its
// own id so replayed webhook deliveries do not collide on message_id alone.
func (u *Update) ToDomain() *domain.Message {
	m := u.Message
	return &domain.Message{
		ID:        uuid.NewString(),
		ChatID:    domain.ChatID(strconv.FormatInt(m.Chat.ID, 10)),
		UserID:    domain.UserID(strconv.FormatInt(m.From.ID, 10)),
		Username:  m.From.Username,
		Text:      m.Text,
		Timestamp: m.Date,
	}
}

// Command extracts a leading slash command from the message text, without
// the bot-name suffix. Returns "" for plain messages.
func (u *Update) Command() string {
	text := strings.TrimSpace(u.Message.Text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	return cmd
}
