package persist

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/hexwar/internal/ir"
)

// ErrInvalidBatch is returned when a document does not satisfy the batch
// schema.
var ErrInvalidBatch = errors.New("invalid batch document")

// Schema is the CUE description of a batch document. Each element type is a
// closed definition: a field its fragments do not define is rejected, and so
// is a type tag outside the disjunction. Dice elements carry dice1 at least.
const Schema = `
#Cohesion:   "GO" | "D" | "R" | "X"
#Tiredness:  "F" | "T" | "E"
#Ammunition: "P" | "S" | "E"
#Charging:   "N" | "BC" | "CC" | "C"
#Stacking:   "T" | "B"
#Order:      "A" | "D" | "F" | "R"

#Head: version: int

#UnitRecord: {
	unit:       string & !=""
	steps:      int & >=0
	cohesion:   #Cohesion
	tiredness:  #Tiredness
	ammunition: #Ammunition
	charging:   #Charging
	engaging:   bool
	orderGiven: bool
	played:     bool
}

#Placement: {
	hexCol:    int
	hexRow:    int
	stacking:  #Stacking
	hexAngle?: int
}

#Orientation: angle: int

#Dice: {
	dice1: int
	[=~"^dice[1-9][0-9]*$"]: int
}

#Instruction: order: #Order

#State:     {#Head, #UnitRecord, type: "state"}
#Move:      {#Head, #UnitRecord, #Placement, type: "move"}
#Rotate:    {#Head, #UnitRecord, #Orientation, type: "rotate"}
#Reorient:  {#Head, #UnitRecord, #Orientation, type: "reorient"}
#Turn:      {#Head, #UnitRecord, #Placement, #Orientation, type: "turn"}
#NextTurn:  {#Head, type: "next-turn"}
#Rally:     {#Head, #UnitRecord, #Dice, type: "rally"}
#Combat:    {#Head, #UnitRecord, #Dice, type: "combat"}
#Disengage: {#Head, #UnitRecord, #Placement, #Dice, type: "disengage"}
#GiveOrder: {#Head, #UnitRecord, #Instruction, type: "give-order"}

#Element: #State | #Move | #Rotate | #Reorient | #Turn | #NextTurn |
	#Rally | #Combat | #Disengage | #GiveOrder

#Batch: {
	version:  int
	game:     string & !=""
	count:    int & >=1
	elements: [...#Element]
}
`

// Validator checks documents against Schema. It is safe for concurrent use.
type Validator struct {
	mu    sync.Mutex
	ctx   *cue.Context
	batch cue.Value
}

// NewValidator compiles Schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(Schema, cue.Filename("batch.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile batch schema: %w", err)
	}
	batch := schema.LookupPath(cue.ParsePath("#Batch"))
	if err := batch.Err(); err != nil {
		return nil, fmt.Errorf("lookup #Batch: %w", err)
	}
	return &Validator{ctx: ctx, batch: batch}, nil
}

// Validate checks a JSON batch document.
func (v *Validator) Validate(data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	doc := v.ctx.CompileBytes(data, cue.Filename("batch.json"))
	if err := doc.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBatch, details(err))
	}
	if err := v.batch.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBatch, details(err))
	}
	return nil
}

// ValidateBatch checks a decoded batch.
func (v *Validator) ValidateBatch(b Batch) error {
	data, err := ir.MarshalCanonical(b.toIR())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBatch, err)
	}
	return v.Validate(data)
}

func details(err error) string {
	return strings.TrimSpace(cueerrors.Details(err, nil))
}
