package espn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/omarshaarawi/courtside/internal/models"
)

// PlayerLimit caps the kona_player_info request.
const PlayerLimit = 1500

var ErrMissingField = errors.New("response missing required field")

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) leagueEndpoint() string {
	return fmt.Sprintf("/seasons/%s/segments/0/leagues/%s", a.client.Config.Season, a.client.Config.LeagueID)
}

func (a *API) GetLeagueMetadata(ctx context.Context) (*models.LeagueMetadata, error) {
	var espnResponse models.LeagueResponse
	params := map[string]string{
		"view": "mSettings",
	}

	if err := a.client.Get(ctx, a.leagueEndpoint(), params, nil, &espnResponse); err != nil {
		return nil, fmt.Errorf("fetching league metadata: %w", err)
	}

	metadata := &models.LeagueMetadata{
		LeagueID:             espnResponse.ID,
		Name:                 espnResponse.Settings.Name,
		SeasonID:             espnResponse.SeasonID,
		CurrentScoringPeriod: espnResponse.ScoringPeriodID,
		IsActive:             espnResponse.Status.IsActive,
		LastUpdated:          time.Now(),
	}

	return metadata, nil
}

func (a *API) GetTeams(ctx context.Context) ([]models.TeamInfo, error) {
	var leagueResponse models.LeagueResponse
	params := map[string]string{
		"view": "mTeam",
	}

	if err := a.client.Get(ctx, a.leagueEndpoint(), params, nil, &leagueResponse); err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}
	if leagueResponse.Teams == nil {
		return nil, fmt.Errorf("fetching teams: %w: teams", ErrMissingField)
	}

	teams := make([]models.TeamInfo, 0, len(leagueResponse.Teams))
	seen := make(map[string]int, len(leagueResponse.Teams))
	for _, team := range leagueResponse.Teams {
		if team.Abbreviation == "" {
			return nil, fmt.Errorf("fetching teams: %w: abbrev of team %d", ErrMissingField, team.ID)
		}
		if other, dup := seen[team.Abbreviation]; dup {
			return nil, fmt.Errorf("fetching teams: teams %d and %d share abbreviation %s", other, team.ID, team.Abbreviation)
		}
		seen[team.Abbreviation] = team.ID
		teams = append(teams, models.TeamInfo{
			ID:           team.ID,
			Abbreviation: team.Abbreviation,
			Name:         team.DisplayName(),
		})
	}

	return teams, nil
}

func playersFilter() (string, error) {
	filters := map[string]interface{}{
		"players": map[string]interface{}{
			"limit": PlayerLimit,
			"sortDraftRanks": map[string]interface{}{
				"sortPriority": 100,
				"sortAsc":      true,
				"value":        "STANDARD",
			},
		},
	}

	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return "", fmt.Errorf("error marshalling filters: %w", err)
	}
	return string(filtersJSON), nil
}

func (a *API) GetPlayers(ctx context.Context) ([]models.Player, error) {
	var playersResponse models.PlayersResponse
	params := map[string]string{
		"view": "kona_player_info",
	}

	filter, err := playersFilter()
	if err != nil {
		return nil, err
	}
	headers := map[string]string{
		"x-fantasy-filter": filter,
	}

	if err := a.client.Get(ctx, a.leagueEndpoint(), params, headers, &playersResponse); err != nil {
		return nil, fmt.Errorf("fetching player statistics: %w", err)
	}
	if playersResponse.Players == nil {
		return nil, fmt.Errorf("fetching player statistics: %w: players", ErrMissingField)
	}

	players := make([]models.Player, 0, len(playersResponse.Players))
	for _, entry := range playersResponse.Players {
		if entry.Player.FullName == "" {
			return nil, fmt.Errorf("fetching player statistics: %w: fullName of player %d", ErrMissingField, entry.ID)
		}
		players = append(players, entry.Player)
	}

	return players, nil
}

// GetRosters returns the full names of every rostered player keyed by team
// abbreviation.
func (a *API) GetRosters(ctx context.Context, teams []models.TeamInfo) (map[string][]string, error) {
	var leagueResponse models.LeagueResponse
	params := map[string]string{
		"view": "mRoster",
	}

	if err := a.client.Get(ctx, a.leagueEndpoint(), params, nil, &leagueResponse); err != nil {
		return nil, fmt.Errorf("fetching league rosters: %w", err)
	}
	if leagueResponse.Teams == nil {
		return nil, fmt.Errorf("fetching league rosters: %w: teams", ErrMissingField)
	}

	abbrevs := make(map[int]string, len(teams))
	for _, team := range teams {
		abbrevs[team.ID] = team.Abbreviation
	}

	rosters := make(map[string][]string, len(leagueResponse.Teams))
	for _, team := range leagueResponse.Teams {
		abbrev, ok := abbrevs[team.ID]
		if !ok {
			return nil, fmt.Errorf("fetching league rosters: unknown team id %d", team.ID)
		}
		names := make([]string, 0, len(team.Roster.Entries))
		for _, entry := range team.Roster.Entries {
			name := entry.PlayerPoolEntry.Player.FullName
			if name == "" {
				return nil, fmt.Errorf("fetching league rosters: %w: fullName of player %d on %s", ErrMissingField, entry.PlayerID, abbrev)
			}
			names = append(names, name)
		}
		rosters[abbrev] = names
	}

	return rosters, nil
}
