package controller_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timada-org/tablesync/internal/bus"
	"github.com/timada-org/tablesync/internal/controller"
	"github.com/timada-org/tablesync/internal/entity"
	"github.com/timada-org/tablesync/internal/resource"
	"github.com/timada-org/tablesync/internal/view"
)

type call struct {
	op     string
	id     string
	fields map[string]string
}

type fakeModel struct {
	mux   sync.Mutex
	calls []call
}

func (m *fakeModel) record(c call) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.calls = append(m.calls, c)
}

func (m *fakeModel) ReadAll() { m.record(call{op: "read"}) }
func (m *fakeModel) Create(f map[string]string) { m.record(call{op: "create", fields: f}) }
func (m *fakeModel) Update(id string, f map[string]string) { m.record(call{op: "update", id: id, fields: f}) }
func (m *fakeModel) Remove(id string) { m.record(call{op: "remove", id: id}) }
func (m *fakeModel) ClearAll() { m.record(call{op: "clear"}) }

func (m *fakeModel) snapshot() []call {
	m.mux.Lock()
	defer m.mux.Unlock()
	return append([]call(nil), m.calls...)
}

type alerts struct {
	mux      sync.Mutex
	messages []string
}

func (a *alerts) Alert(message string) {
	a.mux.Lock()
	defer a.mux.Unlock()
	a.messages = append(a.messages, message)
}

func (a *alerts) snapshot() []string {
	a.mux.Lock()
	defer a.mux.Unlock()
	return append([]string(nil), a.messages...)
}

type syncBuffer struct {
	mux sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mux.Lock()
	defer b.mux.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mux.Lock()
	defer b.mux.Unlock()
	return b.buf.String()
}

type harness struct {
	bus        *bus.Bus
	model      *fakeModel
	alerts     *alerts
	logs       *syncBuffer
	table      *view.Table
	controller *controller.Controller[entity.Person]
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	b := bus.New()
	t.Cleanup(b.Close)

	h := &harness{bus: b, model: &fakeModel{}, alerts: &alerts{}, logs: &syncBuffer{}, table: view.NewTable("peopleRadios")}

	c, err := controller.New(controller.Options[entity.Person]{
		Entity: entity.People,
		Model:  h.model,
		View: view.NewRenderer(view.RendererOptions[entity.Person]{
			Table: h.table,
			ID:    entity.People.ID,
			Row:   entity.People.Row,
		}),
		Bus:     b,
		Alerter: h.alerts,
		Logger:  slog.New(slog.NewTextHandler(h.logs, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	h.controller = c

	return h
}

func (h *harness) publishRead(people []entity.Person) {
	h.bus.Publish(&bus.Event{Topic: resource.Topic("people", resource.ReadSuccess), Data: people})
}

func TestNewReadsImmediately(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, []call{{op: "read"}}, h.model.snapshot())
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name  string
		fname string
		lname string
	}{
		{"both empty", "", ""},
		{"first empty", "", "Nobbs"},
		{"last empty", "Nobby", ""},
	}

	for _, c := range cases {
		t.Run("create "+c.name, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.controller.SetField("fname", c.fname))
			require.NoError(t, h.controller.SetField("lname", c.lname))

			h.controller.Create()

			assert.Equal(t, []call{{op: "read"}}, h.model.snapshot())
			assert.Equal(t, []string{"Problem with first or last name input"}, h.alerts.snapshot())
		})

		t.Run("update "+c.name, func(t *testing.T) {
			h := newHarness(t)
			require.NoError(t, h.controller.SetField("fname", c.fname))
			require.NoError(t, h.controller.SetField("lname", c.lname))

			h.controller.Update()

			assert.Equal(t, []call{{op: "read"}}, h.model.snapshot())
			assert.Len(t, h.alerts.snapshot(), 1)
		})
	}

	t.Run("whitespace is not trimmed", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.controller.SetField("fname", " "))
		require.NoError(t, h.controller.SetField("lname", " "))

		h.controller.Create()

		assert.Empty(t, h.alerts.snapshot())
		assert.Equal(t, call{op: "create", fields: map[string]string{"fname": " ", "lname": " "}}, h.model.snapshot()[1])
	})
}

func TestCreateAndUpdateForwardFields(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.controller.SetField("fname", "Carrot"))
	require.NoError(t, h.controller.SetField("lname", "Ironfounderson"))

	h.controller.Create()
	h.controller.Select("p-2")
	h.controller.Update()

	fields := map[string]string{"fname": "Carrot", "lname": "Ironfounderson"}
	assert.Equal(t, []call{
		{op: "read"},
		{op: "create", fields: fields},
		{op: "update", id: "p-2", fields: fields},
	}, h.model.snapshot())
	assert.Empty(t, h.alerts.snapshot())
}

func TestDeleteWithoutSelection(t *testing.T) {
	h := newHarness(t)

	h.controller.Delete()

	// no guard: the undefined id is forwarded and the model decides
	assert.Equal(t, []call{{op: "read"}, {op: "remove", id: ""}}, h.model.snapshot())
	assert.Empty(t, h.alerts.snapshot())
}

func TestClearAllForwards(t *testing.T) {
	h := newHarness(t)

	h.controller.ClearAll()

	assert.Equal(t, []call{{op: "read"}, {op: "clear"}}, h.model.snapshot())
}

func TestReadSuccessRendersAndSelectsFirst(t *testing.T) {
	h := newHarness(t)

	h.publishRead([]entity.Person{
		{ID: "p-1", FName: "Nobby", LName: "Nobbs", Timestamp: time.Now()},
		{ID: "p-2", FName: "Fred", LName: "Colon", Timestamp: time.Now()},
	})

	assert.Eventually(t, func() bool { return len(h.table.Rows()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return h.controller.Selected() == "p-1" }, time.Second, 5*time.Millisecond)

	h.controller.Select("p-2")
	h.controller.Delete()
	assert.Equal(t, call{op: "remove", id: "p-2"}, h.model.snapshot()[1])

	t.Run("redraw resets selection", func(t *testing.T) {
		h.publishRead([]entity.Person{{ID: "p-3", FName: "a", LName: "b"}})
		assert.Eventually(t, func() bool { return h.controller.Selected() == "p-3" }, time.Second, 5*time.Millisecond)
	})

	t.Run("empty read clears", func(t *testing.T) {
		h.publishRead(nil)
		assert.Eventually(t, func() bool { return len(h.table.Rows()) == 0 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, "", h.controller.Selected())
	})
}

func TestReadSuccessWrongPayload(t *testing.T) {
	h := newHarness(t)

	h.publishRead([]entity.Person{{ID: "p1", FName: "Nobby", LName: "Nobbs"}})
	assert.Eventually(t, func() bool { return h.controller.Selected() == "p1" }, time.Second, 5*time.Millisecond)

	h.bus.Publish(&bus.Event{Topic: resource.Topic("people", resource.ReadSuccess), Data: []entity.Todo{{ID: "t1"}}})

	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(h.logs.String()), []byte("unexpected read payload"))
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, h.logs.String(), "entity.Todo")
	assert.Len(t, h.table.Rows(), 1)
	assert.Equal(t, "p1", h.controller.Selected())
}

func TestStateChangedTriggersRead(t *testing.T) {
	h := newHarness(t)

	h.bus.Publish(&bus.Event{Topic: resource.Topic("people", resource.StateChanged)})
	h.bus.Publish(&bus.Event{Topic: resource.Topic("todos", resource.StateChanged)})

	assert.Eventually(t, func() bool { return len(h.model.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []call{{op: "read"}, {op: "read"}}, h.model.snapshot())
}

func TestFields(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.controller.SetField("fname", "Nobby"))
	err := h.controller.SetField("name", "x")
	require.ErrorIs(t, err, controller.ErrUnknownField)

	assert.Equal(t, map[string]string{"fname": "Nobby", "lname": ""}, h.controller.Fields())

	h.controller.Reset()
	assert.Equal(t, map[string]string{"fname": "", "lname": ""}, h.controller.Fields())
}

func TestCloseStopsReacting(t *testing.T) {
	h := newHarness(t)
	h.controller.Close()

	h.bus.Publish(&bus.Event{Topic: resource.Topic("people", resource.StateChanged)})
	h.publishRead([]entity.Person{{ID: "p-1"}})

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, []call{{op: "read"}}, h.model.snapshot())
	assert.Empty(t, h.table.Rows())
}

func TestControllersShareBusIndependently(t *testing.T) {
	b := bus.New()
	defer b.Close()

	first, second := &fakeModel{}, &fakeModel{}
	for _, m := range []*fakeModel{first, second} {
		c, err := controller.New(controller.Options[entity.Todo]{
			Entity: entity.Todos,
			Model:  m,
			View:   view.NewRenderer(view.RendererOptions[entity.Todo]{Table: view.NewTable("todoRadios"), ID: entity.Todos.ID, Row: entity.Todos.Row}),
			Bus:    b,
		})
		require.NoError(t, err)
		defer c.Close()
	}

	b.Publish(&bus.Event{Topic: resource.Topic("todos", resource.StateChanged)})

	assert.Eventually(t, func() bool {
		return len(first.snapshot()) == 2 && len(second.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)
}
