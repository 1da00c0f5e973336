package game

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Roster describes the starting position of a game. Rosters let the CLI and
// the test harness build the live game that serialized batches resolve
// their references against.
type Roster struct {
	Game  string       `yaml:"game"`
	Turn  int          `yaml:"turn,omitempty"`
	Map   RosterMap    `yaml:"map,omitempty"`
	Units []RosterUnit `yaml:"units"`
}

// RosterMap is the map extent.
type RosterMap struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

// RosterUnit is one unit's starting state. Enumerated fields use wire codes;
// omitted fields take the fresh-unit defaults.
type RosterUnit struct {
	Name       string `yaml:"name"`
	Steps      int    `yaml:"steps"`
	Col        int    `yaml:"col"`
	Row        int    `yaml:"row"`
	Angle      int    `yaml:"angle,omitempty"`
	Stacking   string `yaml:"stacking,omitempty"`
	Cohesion   string `yaml:"cohesion,omitempty"`
	Tiredness  string `yaml:"tiredness,omitempty"`
	Ammunition string `yaml:"ammunition,omitempty"`
	Charging   string `yaml:"charging,omitempty"`
	Engaging   bool   `yaml:"engaging,omitempty"`
	OrderGiven bool   `yaml:"orderGiven,omitempty"`
	Played     bool   `yaml:"played,omitempty"`
}

// ParseRoster decodes a YAML roster. Unknown fields are rejected.
func ParseRoster(r io.Reader) (*Roster, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var roster Roster
	if err := dec.Decode(&roster); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if roster.Game == "" {
		return nil, fmt.Errorf("parse roster: missing game name")
	}
	return &roster, nil
}

// LoadRoster reads a YAML roster file and builds the game it describes.
func LoadRoster(path string) (*Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	roster, err := ParseRoster(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return roster.Build()
}

// Build creates the game described by the roster. The game's undo stack is
// empty: the starting position is not an undoable action.
func (r *Roster) Build() (*Game, error) {
	g := New(r.Game, WithMap(r.Map.Cols, r.Map.Rows))
	g.turn = r.Turn

	for _, ru := range r.Units {
		u, err := ru.build()
		if err != nil {
			return nil, fmt.Errorf("roster unit %q: %w", ru.Name, err)
		}
		if err := g.AddUnit(u); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (ru RosterUnit) build() (*Unit, error) {
	if ru.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	u := NewUnit(ru.Name, ru.Steps)
	u.hex = Hex{Col: ru.Col, Row: ru.Row}
	u.angle = NormalizeAngle(ru.Angle)

	var err error
	if ru.Stacking != "" {
		if u.stacking, err = ParseStacking(ru.Stacking); err != nil {
			return nil, err
		}
	}
	if ru.Cohesion != "" {
		if u.state.Cohesion, err = ParseCohesion(ru.Cohesion); err != nil {
			return nil, err
		}
	}
	if ru.Tiredness != "" {
		if u.state.Tiredness, err = ParseTiredness(ru.Tiredness); err != nil {
			return nil, err
		}
	}
	if ru.Ammunition != "" {
		if u.state.Munitions, err = ParseMunitions(ru.Ammunition); err != nil {
			return nil, err
		}
	}
	if ru.Charging != "" {
		if u.state.Charging, err = ParseCharging(ru.Charging); err != nil {
			return nil, err
		}
	}
	u.state.Engaging = ru.Engaging
	u.state.OrderGiven = ru.OrderGiven
	u.state.Played = ru.Played
	return u, nil
}
