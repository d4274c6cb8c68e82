package bot

import (
	"strings"
	"testing"
)

func TestParseUpdate(t *testing.T) {
	body := `{
		"update_id": 42,
		"message": {
			"message_id": 7,
			"from": {"id": 1001, "username": "alice"},
			"chat": {"id": -500},
			"date": 1700000000,
			"text": "hello there"
		}
	}`

	upd, err := ParseUpdate(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParseUpdate failed: %v", err)
	}

	msg := upd.ToDomain()
	if msg.ChatID != "-500" || msg.UserID != "1001" {
		t.Errorf("ids = (%s, %s), want (-500, 1001)", msg.ChatID, msg.UserID)
	}
	if msg.Username != "alice" || msg.Text != "hello there" {
		t.Errorf("unexpected message fields: %+v", msg)
	}
	if msg.ID == "" {
		t.Error("expected a generated message id")
	}
}

func TestParseUpdate_NoMessage(t *testing.T) {
	if _, err := ParseUpdate(strings.NewReader(`{"update_id": 1}`)); err == nil {
		t.Fatal("expected error for update without message")
	}
}

func TestUpdateCommand(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"/stats", "/stats"},
		{"/summary@chatpulse_bot", "/summary"},
		{"/profanity extra args", "/profanity"},
		{"  /stats  ", "/stats"},
		{"hello", ""},
		{"not /a command", ""},
	}

	for _, tt := range tests {
		upd := &Update{Message: &UpdateMessage{Text: tt.text}}
		if got := upd.Command(); got != tt.want {
			t.Errorf("Command(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
