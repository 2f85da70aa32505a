package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/courtside/internal/pipeline"
	"github.com/omarshaarawi/courtside/internal/pipeline/pipelinetest"
	"github.com/omarshaarawi/courtside/internal/repository/memory"
	"github.com/omarshaarawi/courtside/internal/service"
	"github.com/omarshaarawi/courtside/internal/stats"
)

func TestSplitWindow(t *testing.T) {
	tests := []struct {
		args string
		rest string
		w    stats.Window
	}{
		{"Luka Doncic", "Luka Doncic", stats.Season},
		{"Luka Doncic last_7", "Luka Doncic", stats.Last7},
		{"  BOS   LAST_30 ", "BOS", stats.Last30},
		{"last_15", "", stats.Last15},
		{"", "", stats.Season},
	}
	for _, tt := range tests {
		rest, w := splitWindow(tt.args)
		if rest != tt.rest || w != tt.w {
			t.Errorf("splitWindow(%q) = %q, %s; want %q, %s", tt.args, rest, w, tt.rest, tt.w)
		}
	}
}

func TestSplitTeams(t *testing.T) {
	tests := []struct {
		args string
		a, b string
		ok   bool
	}{
		{"BOS DAL", "BOS", "DAL", true},
		{"Boston Bruisers, Dallas Dunkers", "Boston Bruisers", "Dallas Dunkers", true},
		{"Boston Bruisers vs Dallas Dunkers", "Boston Bruisers", "Dallas Dunkers", true},
		{"BOS,", "BOS", "", false},
		{"BOS", "", "", false},
		{"A B C", "", "", false},
	}
	for _, tt := range tests {
		a, b, ok := splitTeams(tt.args)
		if a != tt.a || b != tt.b || ok != tt.ok {
			t.Errorf("splitTeams(%q) = %q, %q, %v; want %q, %q, %v", tt.args, a, b, ok, tt.a, tt.b, tt.ok)
		}
	}
}

func command(text string) tgbotapi.Update {
	length := len(text)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		length = i
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: 7},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}}
}

func TestHandleCommand(t *testing.T) {
	p := pipeline.New(pipelinetest.NewFetcher(), pipelinetest.NewCheckpoints(), pipelinetest.Catalog())
	svc := service.NewStatsService(p, memory.NewRepository())
	if _, err := svc.Refresh(context.Background(), time.Now(), false); err != nil {
		t.Fatalf("refreshing: %v", err)
	}
	h := NewHandler(svc)

	tests := []struct {
		text string
		want string
	}{
		{"/help", "/trade <team> <team> [window]"},
		{"/team DAL last_7", "Last 7 Days"},
		{"/team Seattle", "team not found"},
		{"/trade BOS vs DAL", "Trade Relevances"},
		{"/trade BOS", "Please provide two teams"},
		{"/player", "Please provide a player name"},
		{"/waivers DAL", "Gordon Hayward"},
		{"/refresh", "5 players, 2 teams"},
		{"/dunk", "Unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			msg := h.HandleCommand(context.Background(), command(tt.text))
			if msg.ChatID != 7 {
				t.Errorf("chat id = %d", msg.ChatID)
			}
			if !strings.Contains(msg.Text, tt.want) {
				t.Errorf("reply missing %q:\n%s", tt.want, msg.Text)
			}
		})
	}
}

func TestChunkMessage(t *testing.T) {
	if got := chunkMessage("short", 10); len(got) != 1 || got[0] != "short" {
		t.Errorf("short message = %q", got)
	}

	got := chunkMessage("aaaa\nbbbb\ncc\n", 10)
	want := []string{"aaaa\nbbbb\n", "cc\n"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("part %d = %q, want %q", i, got[i], want[i])
		}
	}

	got = chunkMessage("🏀🏀🏀🏀🏀🏀\nok", 4)
	want = []string{"🏀🏀🏀🏀", "🏀🏀\n", "ok"}
	if len(got) != len(want) {
		t.Fatalf("long line = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("long line part %d = %q, want %q", i, got[i], want[i])
		}
	}
}
