package handlers

import (
	"testing"

	"github.com/go-telegram/bot/models"
)

func TestStripMention(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		mention string
		want    string
	}{
		{
			name:    "mention at start",
			text:    "@chatmixbot what's up?",
			mention: "@chatmixbot",
			want:    "what's up?",
		},
		{
			name:    "mention in the middle",
			text:    "hey @chatmixbot tell us",
			mention: "@chatmixbot",
			want:    "hey  tell us",
		},
		{
			name:    "case insensitive",
			text:    "@ChatMixBot hello",
			mention: "@chatmixbot",
			want:    "hello",
		},
		{
			name:    "multiple occurrences",
			text:    "@chatmixbot @chatmixbot ping",
			mention: "@chatmixbot",
			want:    "ping",
		},
		{
			name:    "only the mention",
			text:    "@chatmixbot",
			mention: "@chatmixbot",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := stripMention(tt.text, tt.mention); got != tt.want {
				t.Errorf("stripMention(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestTextForMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  models.Message
		want string
	}{
		{
			name: "plain text",
			msg:  models.Message{Text: "hello"},
			want: "hello",
		},
		{
			name: "photo without caption",
			msg:  models.Message{Photo: []models.PhotoSize{{}}},
			want: "*photo*",
		},
		{
			name: "photo with caption",
			msg:  models.Message{Photo: []models.PhotoSize{{}}, Caption: "look at this"},
			want: "*photo* look at this",
		},
		{
			name: "video",
			msg:  models.Message{Video: &models.Video{}},
			want: "*video*",
		},
		{
			name: "sticker",
			msg:  models.Message{Sticker: &models.Sticker{}},
			want: "*sticker*",
		},
		{
			name: "voice",
			msg:  models.Message{Voice: &models.Voice{}},
			want: "*voice*",
		},
		{
			name: "nothing textual",
			msg:  models.Message{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := textForMessage(&tt.msg); got != tt.want {
				t.Errorf("textForMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
