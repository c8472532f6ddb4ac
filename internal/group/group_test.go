package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

type tickets map[string]*model.Ticket

func (m tickets) Ticket(id string) (*model.Ticket, bool) {
	t, ok := m[id]
	return t, ok
}

func newTickets(ids ...string) tickets {
	m := tickets{}
	for _, id := range ids {
		t := &model.Ticket{ID: id}
		t.EnsureCollections()
		m[id] = t
	}
	return m
}

func TestDeriveGroupIDStable(t *testing.T) {
	assert.Equal(t, DeriveGroupID([]string{"a", "b"}), DeriveGroupID([]string{"b", "a"}))
	assert.Equal(t, "group-a-b-c", DeriveGroupID([]string{"c", "a", "b", "a"}))
	assert.Equal(t, "group-", DeriveGroupID(nil))
}

func TestAssignSharedGroup(t *testing.T) {
	m := newTickets("A", "B", "C")

	gid, updated := Assign(m, []string{"A", "B", "C"}, "#FF0000", "")
	assert.Equal(t, "group-A-B-C", gid)
	assert.Equal(t, []string{"A", "B", "C"}, updated)

	_, updated = Assign(m, []string{"A", "B"}, "#00FF00", gid)
	assert.Equal(t, []string{"A", "B"}, updated)

	require.Len(t, m["C"].GroupColors, 1)
	assert.Equal(t, model.GroupColor{GroupID: gid, Color: "#FF0000"}, m["C"].GroupColors[0])
	assert.Equal(t, "#FF0000", m["C"].GroupColor)

	for _, id := range []string{"A", "B"} {
		require.Len(t, m[id].GroupColors, 1, id)
		assert.Equal(t, "#00FF00", m[id].GroupColors[0].Color, id)
		assert.Equal(t, "#00FF00", m[id].GroupColor, id)
	}
}

func TestAssignMultipleGroups(t *testing.T) {
	m := newTickets("A", "B", "C")

	Assign(m, []string{"A", "B"}, "#111111", "")
	Assign(m, []string{"A", "C"}, "#222222", "")

	require.Len(t, m["A"].GroupColors, 2)
	assert.Equal(t, "group-A-B", m["A"].GroupColors[0].GroupID)
	assert.Equal(t, "group-A-C", m["A"].GroupColors[1].GroupID)
	// legacy scalar mirrors the most recent write
	assert.Equal(t, "#222222", m["A"].GroupColor)
	assert.Equal(t, "#111111", Primary(m["A"]))
	assert.Equal(t, []string{"#111111", "#222222"}, Colors(m["A"]))
}

func TestAssignSkipsUnknown(t *testing.T) {
	m := newTickets("A")
	_, updated := Assign(m, []string{"A", "ghost"}, "#123456", "g1")
	assert.Equal(t, []string{"A"}, updated)
	assert.Equal(t, "g1", m["A"].GroupColors[0].GroupID)
}

func TestClear(t *testing.T) {
	m := newTickets("A", "B")
	Assign(m, []string{"A", "B"}, "#FF0000", "")

	cleared := Clear(m, []string{"A", "ghost"})
	assert.Equal(t, []string{"A"}, cleared)
	assert.Empty(t, m["A"].GroupColors)
	assert.Empty(t, m["A"].GroupColor)
	assert.Len(t, m["B"].GroupColors, 1)
}

func TestPrimaryFallsBackToLegacy(t *testing.T) {
	tk := &model.Ticket{GroupColor: "#ABCDEF"}
	assert.Equal(t, "#ABCDEF", Primary(tk))
	assert.Equal(t, []string{"#ABCDEF"}, Colors(tk))
	assert.Equal(t, "", Primary(&model.Ticket{}))
	assert.Nil(t, Colors(&model.Ticket{}))
}
