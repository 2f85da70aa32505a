package fantasy

import (
	"context"

	"github.com/omarshaarawi/courtside/internal/api/espn"
	"github.com/omarshaarawi/courtside/internal/models"
)

type API struct {
	espnAPI *espn.API
}

func NewAPI(espnAPI *espn.API) *API {
	return &API{espnAPI: espnAPI}
}

func (a *API) GetLeagueMetadata(ctx context.Context) (*models.LeagueMetadata, error) {
	return a.espnAPI.GetLeagueMetadata(ctx)
}

func (a *API) GetTeams(ctx context.Context) ([]models.TeamInfo, error) {
	return a.espnAPI.GetTeams(ctx)
}

func (a *API) GetPlayers(ctx context.Context) ([]models.Player, error) {
	return a.espnAPI.GetPlayers(ctx)
}

func (a *API) GetRosters(ctx context.Context, teams []models.TeamInfo) (map[string][]string, error) {
	return a.espnAPI.GetRosters(ctx, teams)
}
