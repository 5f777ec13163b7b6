package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReasonContinuityError tags a polarity reversal of a previously recorded fact.
const ReasonContinuityError = "CONTINUITY ERROR"

// ContradictionFlag is one detected conflict between new text and a prior
// fact. It is resolved only by an explicit external action.
type ContradictionFlag struct {
	ID           uuid.UUID `json:"_id"`
	ScriptID     string    `json:"script_id"`
	Sentence     string    `json:"sentence"`
	ConflictWith string    `json:"conflict_with"`
	ReasonTag    string    `json:"reason_tag"`
	Resolved     bool      `json:"resolved"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
