package tracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ALT-F4-LLC/rmaboard/internal/model"
)

type memStorage struct {
	doc     *model.Document
	saves   int
	loadErr error
}

func (m *memStorage) Load() (*model.Document, error) {
	return m.doc, m.loadErr
}

func (m *memStorage) Save(doc *model.Document) error {
	m.doc = doc
	m.saves++
	return nil
}

func TestOpenEmptyStorage(t *testing.T) {
	tr, err := Open(&memStorage{})
	require.NoError(t, err)
	assert.Empty(t, tr.ListTickets())
	assert.Len(t, tr.ListColumns(), 4)
}

func TestOpenLoadError(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := Open(&memStorage{loadErr: boom})
	assert.ErrorIs(t, err, boom)
}

func TestSaveAndReopen(t *testing.T) {
	tr, _ := newTracker(t)
	a := mustCreate(t, tr, "a")
	b := mustCreate(t, tr, "b")
	col, err := tr.AddColumn("Bench")
	require.NoError(t, err)
	require.NoError(t, tr.MoveTicket(b.ID, col, 0))
	require.NoError(t, tr.AddRelationship(a.ID, b.ID, model.RelationChild, "n"))
	_, err = tr.AddCustomer(CustomerInput{CompanyName: "Acme"})
	require.NoError(t, err)

	store := &memStorage{}
	require.NoError(t, tr.Save(store))
	assert.Equal(t, 1, store.saves)

	re, err := Open(store)
	require.NoError(t, err)
	assert.Equal(t, tr.ListTickets(), re.ListTickets())
	assert.Equal(t, tr.ListColumns(), re.ListColumns())
	assert.Equal(t, tr.ListCustomers(), re.ListCustomers())
	require.NoError(t, re.board.Validate())
}

func TestLoadRebuildsBoardFromHistory(t *testing.T) {
	tr, _ := newTracker(t)
	tk := &model.Ticket{ID: "T1", StatusHistory: []model.StatusEntry{{ColumnID: "review"}}}
	dup := &model.Ticket{ID: "T1", Item: "dup"}

	require.NoError(t, tr.Load(&model.Document{Tickets: []*model.Ticket{tk, nil, {ID: ""}, dup}}))
	require.Len(t, tr.ListTickets(), 1)
	assert.Equal(t, []string{"T1"}, columnTicketIDs(t, tr, "review"))
	got, _ := tr.GetTicket("T1")
	assert.NotNil(t, got.CustomFields)
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	tr, _ := newTracker(t)
	assert.Error(t, tr.Load(&model.Document{Version: model.DocumentVersion + 1}))
}

func TestLoadRepairsEdges(t *testing.T) {
	tr, _ := newTracker(t)
	doc := &model.Document{Tickets: []*model.Ticket{
		{ID: "A", RelatedTickets: []model.RelationshipEdge{
			{TargetID: "B", Type: "weird"},
			{TargetID: "B", Type: model.RelationParent},
			{TargetID: "A", Type: model.RelationSibling},
		}},
		{ID: "B"},
	}}
	require.NoError(t, tr.Load(doc))
	got, _ := tr.GetTicket("A")
	assert.Equal(t, []model.RelationshipEdge{{TargetID: "B", Type: model.RelationParent}}, got.RelatedTickets)
}

func TestDecodeDocumentLenientEdges(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"tickets": [
			{"id": "A", "rma_number": "RMA-2026-001", "related_tickets": ["B", 42, null, {"id": "C", "type": "parent"}, {"id": "B", "type": "child"}]},
			{"id": "B", "related_tickets": [{"note": "no id"}]}
		],
		"customers": [{"id": "c1", "company_name": "Acme"}]
	}`)

	doc, err := DecodeDocument(data, FormatJSON)
	require.NoError(t, err)
	require.Len(t, doc.Tickets, 2)
	assert.Equal(t, []model.RelationshipEdge{
		{TargetID: "B", Type: model.RelationChild},
		{TargetID: "42", Type: model.RelationRelated},
		{TargetID: "C", Type: model.RelationParent},
	}, doc.Tickets[0].RelatedTickets)
	assert.Empty(t, doc.Tickets[1].RelatedTickets)
	assert.Equal(t, "RMA-2026-001", doc.Tickets[0].RMANumber)
	assert.Nil(t, doc.Board)

	_, err = DecodeDocument([]byte(`{"tickets": 3}`), FormatJSON)
	assert.Error(t, err)
}

func TestEncodeDecodeYAML(t *testing.T) {
	tr, _ := newTracker(t)
	a := mustCreate(t, tr, "a")
	b := mustCreate(t, tr, "b")
	require.NoError(t, tr.AddRelationship(a.ID, b.ID, model.RelationParent, ""))
	_, err := tr.AssignGroupColor([]string{a.ID, b.ID}, "#FF0000", "")
	require.NoError(t, err)

	out, err := EncodeDocument(tr.Document(), FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "rma_number: RMA-2026-001")

	doc, err := DecodeDocument(out, FormatYAML)
	require.NoError(t, err)
	re := New()
	require.NoError(t, re.Load(doc))
	assert.Equal(t, tr.ListTickets(), re.ListTickets())
	assert.Equal(t, tr.ListColumns(), re.ListColumns())

	_, err = EncodeDocument(tr.Document(), "toml")
	assert.Error(t, err)
}
