package model

import "strings"

// Well-known metric names shared by the store, the engine and the interpreter.
const (
	MetricAge                      = "age"
	MetricMinutes                  = "minutes"
	MetricNineties                 = "nineties"
	MetricGoals                    = "goals"
	MetricAssists                  = "assists"
	MetricGoalsPer90               = "goals_per_90"
	MetricAssistsPer90             = "assists_per_90"
	MetricExpectedGoals            = "expected_goals"
	MetricExpectedAssists          = "expected_assists"
	MetricProgressiveCarries       = "progressive_carries"
	MetricProgressivePasses        = "progressive_passes"
	MetricTackles                  = "tackles"
	MetricInterceptions            = "interceptions"
	MetricTacklesPlusInterceptions = "tackles_plus_interceptions"
	MetricDefensiveActions         = "defensive_actions"
	MetricProgressiveActions       = "progressive_actions"
)

// PlayerKey is the composite identity of a player season row.
type PlayerKey struct {
	League string `json:"league"`
	Season string `json:"season"`
	Team   string `json:"team"`
	Name   string `json:"name"`
}

func (k PlayerKey) String() string {
	return k.League + "|" + k.Season + "|" + k.Team + "|" + k.Name
}

// PlayerRecord is one unified row of the Player Store.
// Records are shared by pointer and must not be modified after load.
type PlayerRecord struct {
	Key         PlayerKey          `json:"key"`
	Position    string             `json:"position"`
	Nationality string             `json:"nationality"`
	Metrics     map[string]float64 `json:"metrics"`
	Row         int                `json:"-"`
}

// Metric returns the raw value and whether the record carries it at all.
func (p *PlayerRecord) Metric(name string) (float64, bool) {
	v, ok := p.Metrics[name]
	return v, ok
}

// Value returns the metric or 0 when absent.
func (p *PlayerRecord) Value(name string) float64 {
	switch name {
	case MetricDefensiveActions:
		return p.DefensiveActions()
	case MetricProgressiveActions:
		return p.ProgressiveActions()
	}
	return p.Metrics[name]
}

// Age returns the age in whole years.
func (p *PlayerRecord) Age() (int, bool) {
	v, ok := p.Metrics[MetricAge]
	if !ok {
		return 0, false
	}
	return int(v), true
}

func (p *PlayerRecord) Minutes() float64 { return p.Metrics[MetricMinutes] }

// Nineties is the number of full matches played, derived from minutes when the source lacks it.
func (p *PlayerRecord) Nineties() float64 {
	if v, ok := p.Metrics[MetricNineties]; ok && v > 0 {
		return v
	}
	return p.Minutes() / 90
}

// ProgressiveActions sums progressive carries and passes.
func (p *PlayerRecord) ProgressiveActions() float64 {
	return p.Metrics[MetricProgressiveCarries] + p.Metrics[MetricProgressivePasses]
}

// DefensiveActions is tackles plus interceptions per 90 minutes.
func (p *PlayerRecord) DefensiveActions() float64 {
	total, ok := p.Metrics[MetricTacklesPlusInterceptions]
	if !ok {
		total = p.Metrics[MetricTackles] + p.Metrics[MetricInterceptions]
	}
	n := p.Nineties()
	if n <= 0 {
		return 0
	}
	return total / n
}

// PlaysPosition reports a case-insensitive substring match on the position field.
func (p *PlayerRecord) PlaysPosition(position string) bool {
	if position == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Position), strings.ToLower(position))
}
