package domain

import (
	"fmt"
	"strings"
)

// ExerciseType identifies one of the fitness tests the analysis backend can
// score. The zero value means "nothing selected".
type ExerciseType int

const (
	ExerciseUnknown ExerciseType = iota
	VerticalJump
	ShuttleRun
	Situps
	Pushups
	PlankHold
	StandingBroadJump
	Squats
	EnduranceRun
)

// wireTokens is the explicit mapping from exercise types to the
// `exercise_type` form field the backend expects. Renaming a Go constant
// must never change what goes on the wire, so this table is the single
// source of truth for the contract.
var wireTokens = map[ExerciseType]string{
	VerticalJump:      "VERTICAL_JUMP",
	ShuttleRun:        "SHUTTLE_RUN",
	Situps:            "SITUPS",
	Pushups:           "PUSHUPS",
	PlankHold:         "PLANK_HOLD",
	StandingBroadJump: "STANDING_BROAD_JUMP",
	Squats:            "SQUATS",
	EnduranceRun:      "ENDURANCE_RUN",
}

// exerciseOrder fixes the enumeration order shown to the user.
var exerciseOrder = []ExerciseType{
	VerticalJump,
	ShuttleRun,
	Situps,
	Pushups,
	PlankHold,
	StandingBroadJump,
	Squats,
	EnduranceRun,
}

// ExerciseTypes returns the fixed enumeration in display order.
func ExerciseTypes() []ExerciseType {
	out := make([]ExerciseType, len(exerciseOrder))
	copy(out, exerciseOrder)
	return out
}

// Valid reports whether t is a member of the enumeration.
func (t ExerciseType) Valid() bool {
	_, ok := wireTokens[t]
	return ok
}

// WireToken returns the server-side token for t, or "" for the zero value
// and any other non-member.
func (t ExerciseType) WireToken() string {
	return wireTokens[t]
}

// DisplayName returns a human-readable label, e.g. "Vertical Jump".
func (t ExerciseType) DisplayName() string {
	token := wireTokens[t]
	if token == "" {
		return "Unknown"
	}
	words := strings.Split(strings.ToLower(token), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (t ExerciseType) String() string {
	if token := wireTokens[t]; token != "" {
		return token
	}
	return fmt.Sprintf("ExerciseType(%d)", int(t))
}

// ParseExerciseType resolves a wire token back to its exercise type. Like
// the backend, it accepts both the canonical upper-case form and the
// lower-case variant.
func ParseExerciseType(token string) (ExerciseType, error) {
	upper := strings.ToUpper(token)
	for t, wire := range wireTokens {
		if wire == upper {
			return t, nil
		}
	}
	return ExerciseUnknown, fmt.Errorf("invalid exercise type: %q", token)
}
