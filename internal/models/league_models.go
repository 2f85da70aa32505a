package models

import "time"

type LeagueMetadata struct {
	LeagueID             int       `json:"leagueId"`
	Name                 string    `json:"name"`
	SeasonID             int       `json:"seasonId"`
	CurrentScoringPeriod int       `json:"currentScoringPeriod"`
	IsActive             bool      `json:"isActive"`
	LastUpdated          time.Time `json:"lastUpdated"`
}

type TeamInfo struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbrev"`
	Name         string `json:"name"`
}
