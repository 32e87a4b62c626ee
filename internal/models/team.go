package models

import "time"

// Team represents a league team
type Team struct {
	ID         int64     `db:"id" json:"id"`
	ExternalID int64     `db:"external_id" json:"external_id" validate:"required"`
	Name       string    `db:"name" json:"name" validate:"required"`
	ShortName  string    `db:"short_name" json:"short_name"`
	TLA        string    `db:"tla" json:"tla"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// StandingSnapshot represents a team's league table entry at a point in time
type StandingSnapshot struct {
	ID           int64     `db:"id" json:"id"`
	TeamID       int64     `db:"team_id" json:"team_id" validate:"required"`
	Position     int       `db:"position" json:"position" validate:"required,gt=0"`
	Played       int       `db:"played" json:"played"`
	Points       int       `db:"points" json:"points"`
	GoalsFor     int       `db:"goals_for" json:"goals_for"`
	GoalsAgainst int       `db:"goals_against" json:"goals_against"`
	GoalDiff     int       `db:"goal_diff" json:"goal_diff"`
	SnapshotDate time.Time `db:"snapshot_date" json:"snapshot_date"`
}
