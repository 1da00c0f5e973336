package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexwar/internal/ir"
)

func TestValidator_AcceptsEncodedBatches(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	b := sampleBatch(t)
	assert.NoError(t, v.ValidateBatch(b))

	data, err := JSONCodec{}.Marshal(b)
	require.NoError(t, err)
	assert.NoError(t, v.Validate(data))
}

func TestValidator_AcceptsEmptyBatch(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.NoError(t, v.Validate([]byte(`{"version":1,"game":"g","count":1,"elements":[]}`)))
}

func TestValidator_Rejects(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := map[string]string{
		"syntax error":      `{"version":1,`,
		"missing game":      `{"version":1,"count":1,"elements":[]}`,
		"empty game":        `{"version":1,"game":"","count":1,"elements":[]}`,
		"zero count":        `{"version":1,"game":"g","count":0,"elements":[]}`,
		"unknown top field": `{"version":1,"game":"g","count":1,"elements":[],"extra":true}`,
		"element no type":   `{"version":1,"game":"g","count":1,"elements":[{"version":1}]}`,
		"bad cohesion":      `{"version":1,"game":"g","count":1,"elements":[{"version":1,"type":"state","cohesion":"Q"}]}`,
		"bad stacking":      `{"version":1,"game":"g","count":1,"elements":[{"version":1,"type":"move","stacking":"M"}]}`,
		"unknown field":     `{"version":1,"game":"g","count":1,"elements":[{"version":1,"type":"state","morale":3}]}`,
		"dice not int":      `{"version":1,"game":"g","count":1,"elements":[{"version":1,"type":"rally","dice1":"six"}]}`,
		"dice0 is no die":   `{"version":1,"game":"g","count":1,"elements":[{"version":1,"type":"rally","dice0":3}]}`,
		"steps negative":    `{"version":1,"game":"g","count":1,"elements":[{"version":1,"type":"state","steps":-1}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			err := v.Validate([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidBatch)
		})
	}
}

const record = `"unit":"Guard","steps":4,"cohesion":"GO","tiredness":"F","ammunition":"P","charging":"N","engaging":false,"orderGiven":false,"played":false`

func elementDoc(fields string) string {
	return `{"version":1,"game":"g","count":1,"elements":[{"version":1,` + fields + `}]}`
}

func TestValidator_ElementTypes(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	valid := map[string]string{
		"next-turn":       `"type":"next-turn"`,
		"state":           `"type":"state",` + record,
		"move":            `"type":"move",` + record + `,"hexCol":1,"hexRow":2,"stacking":"T"`,
		"move with angle": `"type":"move",` + record + `,"hexCol":1,"hexRow":2,"stacking":"B","hexAngle":60`,
		"rally one die":   `"type":"rally",` + record + `,"dice1":5`,
		"combat two dice": `"type":"combat",` + record + `,"dice1":5,"dice2":1`,
		"disengage":       `"type":"disengage",` + record + `,"hexCol":0,"hexRow":0,"stacking":"T","dice1":2`,
		"give-order":      `"type":"give-order",` + record + `,"order":"A"`,
	}
	for name, fields := range valid {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, v.Validate([]byte(elementDoc(fields))))
		})
	}

	invalid := map[string]string{
		"unknown type":           `"type":"volley",` + record,
		"rally without dice":     `"type":"rally",` + record,
		"combat only dice2":      `"type":"combat",` + record + `,"dice2":3`,
		"disengage without dice": `"type":"disengage",` + record + `,"hexCol":0,"hexRow":0,"stacking":"T"`,
		"move missing hexCol":    `"type":"move",` + record + `,"hexRow":2,"stacking":"T"`,
		"state missing cohesion": `"type":"state","unit":"Guard","steps":4,"tiredness":"F","ammunition":"P","charging":"N","engaging":false,"orderGiven":false,"played":false`,
		"next-turn with unit":    `"type":"next-turn","unit":"Guard"`,
		"rotate with dice":       `"type":"rotate",` + record + `,"angle":60,"dice1":3`,
		"give-order bad order":   `"type":"give-order",` + record + `,"order":"Z"`,
	}
	for name, fields := range invalid {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, v.Validate([]byte(elementDoc(fields))), ErrInvalidBatch)
		})
	}
}

func TestValidator_ValidateBatchRejectsNull(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	b := Batch{Version: 1, Game: "g", Count: 1, Elements: []ir.IRObject{{"type": ir.IRNull{}}}}
	assert.ErrorIs(t, v.ValidateBatch(b), ErrInvalidBatch)
}
