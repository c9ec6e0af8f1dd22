package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

func TestSplitJoin_PreservesUnknownMembers(t *testing.T) {
	in := []byte(`{"id":"p1","quantity":2,"color":"red","meta":{"gift":true}}`)

	var l line
	extra, err := Split(in, &l, "id", "quantity")
	require.NoError(t, err)
	assert.Equal(t, line{ID: "p1", Quantity: 2}, l)
	assert.Len(t, extra, 2)

	out, err := Join(l, extra)
	require.NoError(t, err)
	assert.JSONEq(t, string(in), string(out))
}

func TestSplit_NoExtras(t *testing.T) {
	var l line
	extra, err := Split([]byte(`{"id":"p1","quantity":1}`), &l, "id", "quantity")
	require.NoError(t, err)
	assert.Nil(t, extra)
}

func TestSplit_KnownNamesIgnoreCase(t *testing.T) {
	in := []byte(`{"ID":"p1","Quantity":4,"note":"x"}`)

	var l line
	extra, err := Split(in, &l, "id", "quantity")
	require.NoError(t, err)
	assert.Equal(t, line{ID: "p1", Quantity: 4}, l)
	assert.Equal(t, Fields{"note": json.RawMessage(`"x"`)}, extra)

	out, err := Join(l, extra)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","quantity":4,"note":"x"}`, string(out))
}

func TestJoin_TypedMembersWin(t *testing.T) {
	out, err := Join(line{ID: "typed", Quantity: 1}, Fields{"id": json.RawMessage(`"extra"`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"typed","quantity":1}`, string(out))
}

func TestOverlay(t *testing.T) {
	merged, err := Overlay(line{ID: "p1", Quantity: 1}, Fields{
		"quantity": json.RawMessage(`5`),
		"note":     json.RawMessage(`"x"`),
	})
	require.NoError(t, err)

	data, err := json.Marshal(merged)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","quantity":5,"note":"x"}`, string(data))
}

func TestFields_SetWithout(t *testing.T) {
	f := Fields{"a": json.RawMessage(`1`)}
	require.NoError(t, f.Set("b", "two"))
	assert.JSONEq(t, `"two"`, string(f["b"]))

	g := f.Without("a")
	assert.NotContains(t, g, "a")
	assert.Contains(t, f, "a", "original untouched")
}
