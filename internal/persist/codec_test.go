package persist

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hexwar/internal/game"
	"github.com/roach88/hexwar/internal/ir"
	"github.com/roach88/hexwar/internal/sequence"
)

func sampleBatch(t *testing.T) Batch {
	t.Helper()
	g := newTestGame(t)
	hussars := unit(t, g, "1st-Hussars")
	move := sequence.NewMove(hussars, hussars.State(), game.Hex{Col: 3, Row: 4}, game.Bottom).WithHexAngle(120)
	combat := sequence.NewCombat(unit(t, g, "2nd-Foot"), game.UnitState{Steps: 5, Engaging: true}, 6, 2)
	return committedBatch(t, g, 1, move, combat, sequence.NewNextTurn(g))
}

func TestJSONCodec_Golden(t *testing.T) {
	data, err := JSONCodec{}.Marshal(sampleBatch(t))
	require.NoError(t, err)

	gd := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gd.Assert(t, "batch", data)
}

func TestCodecs_RoundTrip(t *testing.T) {
	b := sampleBatch(t)

	for _, c := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		t.Run(c.ContentType(), func(t *testing.T) {
			data, err := c.Marshal(b)
			require.NoError(t, err)

			got, err := c.Unmarshal(data)
			require.NoError(t, err)
			assert.Equal(t, b, got)

			again, err := c.Marshal(got)
			require.NoError(t, err)
			assert.Equal(t, data, again, "encoding is deterministic")
		})
	}
}

func TestCodecs_List(t *testing.T) {
	g := newTestGame(t)
	list := []Batch{
		committedBatch(t, g, 1, sequence.NewNextTurn(g)),
		committedBatch(t, g, 2),
	}

	for _, c := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		t.Run(c.ContentType(), func(t *testing.T) {
			data, err := c.MarshalList(list)
			require.NoError(t, err)

			got, err := c.UnmarshalList(data)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, list[0], got[0])
			assert.Equal(t, int64(2), got[1].Count)
			assert.Empty(t, got[1].Elements)
		})
	}
}

func TestJSONCodec_EmptyBatch(t *testing.T) {
	g := newTestGame(t)
	data, err := JSONCodec{}.Marshal(committedBatch(t, g, 3))
	require.NoError(t, err)
	assert.Equal(t, `{"count":3,"elements":[],"game":"test-game","version":1}`, string(data))
}

func TestJSONCodec_RejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"not json":         `{"count":`,
		"not an object":    `[1,2]`,
		"float count":      `{"version":1,"game":"g","count":1.5,"elements":[]}`,
		"missing game":     `{"version":1,"count":1,"elements":[]}`,
		"element not obj":  `{"version":1,"game":"g","count":1,"elements":["move"]}`,
		"elements missing": `{"version":1,"game":"g","count":1}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := JSONCodec{}.Unmarshal([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestMsgpackCodec_AcceptsNarrowIntegers(t *testing.T) {
	data, err := encodeMsgpack(map[string]any{
		"version":  int8(1),
		"game":     "g",
		"count":    uint16(300),
		"elements": []any{map[string]any{"version": uint8(1), "type": "next-turn"}},
	})
	require.NoError(t, err)

	b, err := MsgpackCodec{}.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, int64(300), b.Count)
	assert.Equal(t, ir.IRInt(1), b.Elements[0]["version"])
}

func TestCodecFor(t *testing.T) {
	assert.IsType(t, MsgpackCodec{}, CodecFor("application/msgpack"))
	assert.IsType(t, MsgpackCodec{}, CodecFor("application/msgpack; charset=binary"))
	assert.IsType(t, JSONCodec{}, CodecFor("application/json"))
	assert.IsType(t, JSONCodec{}, CodecFor(""))
	assert.IsType(t, JSONCodec{}, CodecFor("text/plain"))
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("msgpack")
	require.NoError(t, err)
	assert.Equal(t, ContentTypeMsgpack, c.ContentType())

	c, err = CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, ContentTypeJSON, c.ContentType())

	_, err = CodecByName("xml")
	assert.Error(t, err)
}

func TestBatch_HashDependsOnOrder(t *testing.T) {
	g := newTestGame(t)
	a := sequence.NewState(unit(t, g, "1st-Hussars"), game.UnitState{Steps: 1})
	b := sequence.NewState(unit(t, g, "2nd-Foot"), game.UnitState{Steps: 2})

	h1, err := committedBatch(t, g, 1, a, b).Hash()
	require.NoError(t, err)
	h2, err := committedBatch(t, g, 1, b, a).Hash()
	require.NoError(t, err)
	h3, err := committedBatch(t, g, 1, a, b).Hash()
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.Equal(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestBatch_CheckVersion(t *testing.T) {
	assert.NoError(t, Batch{Version: ir.WireVersion}.CheckVersion())
	assert.ErrorIs(t, Batch{Version: 99}.CheckVersion(), ErrVersionMismatch)
}
