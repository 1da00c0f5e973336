package harness

import (
	"fmt"

	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/sequence"
)

// buildElement turns a scenario step into the element live play would
// record for it, resolved against g's current position.
func buildElement(g *game.Game, step Step) (sequence.Element, error) {
	if step.Type == sequence.TypeNextTurn {
		return sequence.NewNextTurn(g), nil
	}

	u, ok := g.Unit(step.Unit)
	if !ok {
		return nil, fmt.Errorf("unknown unit %q", step.Unit)
	}
	st, err := step.state(u.State())
	if err != nil {
		return nil, err
	}

	switch step.Type {
	case sequence.TypeState:
		return sequence.NewState(u, st), nil

	case sequence.TypeMove:
		h, s, err := step.placement(u)
		if err != nil {
			return nil, err
		}
		m := sequence.NewMove(u, st, h, s)
		if step.HexAngle != nil {
			m.WithHexAngle(*step.HexAngle)
		}
		return m, nil

	case sequence.TypeRotate:
		return sequence.NewRotate(u, st, step.angle(u)), nil

	case sequence.TypeReorient:
		return sequence.NewReorient(u, st, step.angle(u)), nil

	case sequence.TypeTurn:
		h, s, err := step.placement(u)
		if err != nil {
			return nil, err
		}
		return sequence.NewTurn(u, st, h, s, step.angle(u)), nil

	case sequence.TypeRally, sequence.TypeCombat, sequence.TypeDisengage:
		if len(step.Dice) == 0 {
			return nil, fmt.Errorf("%s: dice are required", step.Type)
		}
		die, more := step.Dice[0], step.Dice[1:]
		switch step.Type {
		case sequence.TypeRally:
			return sequence.NewRally(u, st, die, more...), nil
		case sequence.TypeCombat:
			return sequence.NewCombat(u, st, die, more...), nil
		}
		h, s, err := step.placement(u)
		if err != nil {
			return nil, err
		}
		return sequence.NewDisengage(u, st, h, s, die, more...), nil

	case sequence.TypeGiveOrder:
		o, err := game.ParseOrder(step.Order)
		if err != nil {
			return nil, err
		}
		return sequence.NewGiveOrder(u, st, o), nil
	}
	return nil, fmt.Errorf("unknown step type %q", step.Type)
}

// state applies the step's state changes to cur.
func (s Step) state(cur game.UnitState) (game.UnitState, error) {
	st := cur
	var err error
	if s.Steps != nil {
		st.Steps = *s.Steps
	}
	if s.Cohesion != "" {
		if st.Cohesion, err = game.ParseCohesion(s.Cohesion); err != nil {
			return st, err
		}
	}
	if s.Tiredness != "" {
		if st.Tiredness, err = game.ParseTiredness(s.Tiredness); err != nil {
			return st, err
		}
	}
	if s.Ammunition != "" {
		if st.Munitions, err = game.ParseMunitions(s.Ammunition); err != nil {
			return st, err
		}
	}
	if s.Charging != "" {
		if st.Charging, err = game.ParseCharging(s.Charging); err != nil {
			return st, err
		}
	}
	if s.Engaging != nil {
		st.Engaging = *s.Engaging
	}
	if s.OrderGiven != nil {
		st.OrderGiven = *s.OrderGiven
	}
	if s.Played != nil {
		st.Played = *s.Played
	}
	return st, nil
}

// placement returns the step's target hex and stacking, defaulting to the
// unit's current ones.
func (s Step) placement(u *game.Unit) (game.Hex, game.Stacking, error) {
	h := u.Hex()
	if s.Col != nil {
		h.Col = *s.Col
	}
	if s.Row != nil {
		h.Row = *s.Row
	}
	stacking := u.Stacking()
	if s.Stacking != "" {
		var err error
		if stacking, err = game.ParseStacking(s.Stacking); err != nil {
			return h, stacking, err
		}
	}
	return h, stacking, nil
}

func (s Step) angle(u *game.Unit) int {
	if s.Angle != nil {
		return *s.Angle
	}
	return u.Angle()
}
