package espn

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/omarshaarawi/courtside/internal/config"
	"github.com/omarshaarawi/courtside/internal/models"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(config.ESPNAPI{Season: "2021", LeagueID: "42", SWID: "{abc}", ESPNS2: "s2"})
	client.BaseURL = srv.URL
	return NewAPI(client)
}

func TestGetPlayersSendsFilterAndCookies(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/seasons/2021/segments/0/leagues/42" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("view"); got != "kona_player_info" {
			t.Errorf("view = %s", got)
		}
		if got := r.Header.Get("Cookie"); got != "SWID={abc}; espn_s2=s2" {
			t.Errorf("cookie = %s", got)
		}

		var filter struct {
			Players struct {
				Limit int `json:"limit"`
			} `json:"players"`
		}
		if err := json.Unmarshal([]byte(r.Header.Get("x-fantasy-filter")), &filter); err != nil {
			t.Errorf("decoding filter: %v", err)
		}
		if filter.Players.Limit != PlayerLimit {
			t.Errorf("limit = %d", filter.Players.Limit)
		}

		w.Write([]byte(`{"players":[{"id":1,"player":{"id":1,"fullName":"Stephen Curry","stats":[{"averageStats":{"0":30.1}},{}]}}]}`))
	})

	players, err := api.GetPlayers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(players) != 1 || players[0].FullName != "Stephen Curry" {
		t.Fatalf("players = %+v", players)
	}
	if players[0].Stats[0].AverageStats["0"] != 30.1 || players[0].Stats[1].AverageStats != nil {
		t.Errorf("stats = %+v", players[0].Stats)
	}
}

func TestGetPlayersValidatesResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing players", `{}`},
		{"missing full name", `{"players":[{"id":3,"player":{"id":3}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			if _, err := api.GetPlayers(context.Background()); !errors.Is(err, ErrMissingField) {
				t.Fatalf("expected ErrMissingField, got %v", err)
			}
		})
	}
}

func TestGetTeamsAndRosters(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("view") {
		case "mTeam":
			w.Write([]byte(`{"teams":[
				{"id":1,"abbrev":"HOOP","location":"Hoop","nickname":"Dreams"},
				{"id":2,"abbrev":"DNK","name":"Dunkers"}]}`))
		case "mRoster":
			w.Write([]byte(`{"teams":[
				{"id":1,"roster":{"entries":[{"playerId":10,"playerPoolEntry":{"player":{"fullName":"Jayson Tatum"}}}]}},
				{"id":2,"roster":{"entries":[]}}]}`))
		default:
			t.Errorf("unexpected view %s", r.URL.Query().Get("view"))
		}
	})

	teams, err := api.GetTeams(context.Background())
	if err != nil {
		t.Fatalf("GetTeams: %v", err)
	}
	want := []models.TeamInfo{{ID: 1, Abbreviation: "HOOP", Name: "Hoop Dreams"}, {ID: 2, Abbreviation: "DNK", Name: "Dunkers"}}
	for i := range want {
		if teams[i] != want[i] {
			t.Errorf("team %d = %+v, want %+v", i, teams[i], want[i])
		}
	}

	rosters, err := api.GetRosters(context.Background(), teams)
	if err != nil {
		t.Fatalf("GetRosters: %v", err)
	}
	if len(rosters["HOOP"]) != 1 || rosters["HOOP"][0] != "Jayson Tatum" {
		t.Errorf("HOOP roster = %v", rosters["HOOP"])
	}
	if roster, ok := rosters["DNK"]; !ok || len(roster) != 0 {
		t.Errorf("DNK roster = %v, %v", roster, ok)
	}

	if _, err := api.GetRosters(context.Background(), teams[:1]); err == nil || !strings.Contains(err.Error(), "unknown team id 2") {
		t.Errorf("expected unknown team error, got %v", err)
	}
}

func TestClientUnexpectedStatus(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := api.GetLeagueMetadata(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unexpected status code: 401") {
		t.Fatalf("expected status error, got %v", err)
	}
}
