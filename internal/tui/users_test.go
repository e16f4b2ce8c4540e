package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-admin/internal/bridge"
	"go-user-admin/internal/domain"
	"go-user-admin/internal/view"
)

type stubBridge struct {
	rows      []domain.UserRow
	queries   int
	deleted   []string
	mutations []bridge.Mutation
}

func (s *stubBridge) Query(context.Context, bridge.ListUsers) (bridge.QueryResult, error) {
	s.queries++
	return bridge.QueryResult{Code: bridge.StatusOK, Data: append([]domain.UserRow(nil), s.rows...)}, nil
}

func (s *stubBridge) Execute(_ context.Context, cmd bridge.DeleteUser) (bridge.Result, error) {
	if cmd.ID == "admin" {
		return bridge.Result{Message: "cannot delete the developer or admin account"}, nil
	}
	s.deleted = append(s.deleted, cmd.ID)
	var kept []domain.UserRow
	for _, r := range s.rows {
		if r.ID != cmd.ID {
			kept = append(kept, r)
		}
	}
	s.rows = kept
	return bridge.Result{OK: true}, nil
}

func (s *stubBridge) Mutate(_ context.Context, m bridge.Mutation) (bool, error) {
	s.mutations = append(s.mutations, m)
	if add, ok := m.(bridge.AddUser); ok {
		s.rows = append(s.rows, domain.UserRow{ID: add.ID, Name: add.Name, Role: add.Role})
	}
	return true, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// settle 执行命令并把远程结果回灌，忽略 spinner/光标等消息
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for i := 0; len(queue) > 0 && i < 50; i++ {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case remoteMsg:
			next, nc := m.Update(msg)
			m = next.(Model)
			queue = append(queue, nc)
		}
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(key(k))
		m = next.(Model)
		m = settle(t, m, cmd)
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = press(t, m, string(r))
	}
	return m
}

func started(t *testing.T, b *stubBridge) Model {
	t.Helper()
	vm := view.New(b, view.WithRoles([]string{"developer", "admin", "editor", "guest"}))
	m := New(vm, "Users")
	return settle(t, m, m.Init())
}

var rows = []domain.UserRow{
	{ID: "admin", Name: "Li Si", Role: "admin", Description: "Administrator"},
	{ID: "alice", Name: "Alice", Role: "editor", Description: "Editor"},
}

func TestInitLoadsRows(t *testing.T) {
	b := &stubBridge{rows: rows}
	m := started(t, b)

	assert.Equal(t, 1, b.queries)
	assert.Equal(t, rows, m.vm.Rows)
	assert.Len(t, m.table.Rows(), 2)
	assert.Contains(t, m.View(), "alice")
}

func TestDeleteFlow(t *testing.T) {
	b := &stubBridge{rows: append([]domain.UserRow(nil), rows...)}
	m := started(t, b)

	m = press(t, m, "d")
	assert.Equal(t, modeConfirmDel, m.mode)
	assert.Contains(t, m.View(), `Delete user "admin"?`)

	m = press(t, m, "enter")
	assert.Equal(t, modeNormal, m.mode)
	assert.Empty(t, b.deleted)
	assert.Contains(t, m.View(), "cannot delete the developer or admin account")
	assert.Equal(t, 1, b.queries)

	m = press(t, m, "down", "d", "enter")
	assert.Equal(t, []string{"alice"}, b.deleted)
	assert.Equal(t, 2, b.queries)
	assert.Len(t, m.vm.Rows, 1)
}

func TestEscCancelsDelete(t *testing.T) {
	b := &stubBridge{rows: rows}
	m := started(t, b)

	m = press(t, m, "d", "esc")
	assert.Equal(t, modeNormal, m.mode)
	assert.Empty(t, b.deleted)
}

func TestAddDialogFlow(t *testing.T) {
	b := &stubBridge{rows: append([]domain.UserRow(nil), rows...)}
	m := started(t, b)

	m = press(t, m, "a")
	require.Equal(t, modeAdd, m.mode)
	assert.True(t, m.vm.Add.Visible)

	m = typeText(t, m, "bob")
	m = press(t, m, "enter")
	m = typeText(t, m, "Bob")
	m = press(t, m, "enter")
	m = typeText(t, m, "guest")
	m = press(t, m, "enter")
	m = typeText(t, m, "secret")
	m = press(t, m, "enter")

	require.Len(t, b.mutations, 1)
	assert.Equal(t, bridge.AddUser{ID: "bob", Name: "Bob", Role: "guest", Password: "secret"}, b.mutations[0])
	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, 2, b.queries)
	assert.Contains(t, m.View(), "user bob created")
}

func TestAddDialogShowsValidationHint(t *testing.T) {
	b := &stubBridge{rows: rows}
	m := started(t, b)

	m = press(t, m, "a", "enter", "enter", "enter", "enter")
	assert.Equal(t, modeAdd, m.mode)
	assert.Empty(t, b.mutations)
	assert.Contains(t, m.hint, "ID is required")

	m = press(t, m, "esc")
	assert.Equal(t, modeNormal, m.mode)
	assert.False(t, m.vm.Add.Visible)
}

func TestEditDialogFlow(t *testing.T) {
	b := &stubBridge{rows: rows}
	m := started(t, b)

	m = press(t, m, "down", "e")
	require.Equal(t, modeEdit, m.mode)
	assert.Equal(t, "alice", m.vm.Edit.Target.ID)
	assert.Equal(t, 1, m.focus, "id is read-only")

	m = typeText(t, m, " B")
	m = press(t, m, "enter", "enter", "enter")

	require.Len(t, b.mutations, 1)
	assert.Equal(t, bridge.EditUser{ID: "alice", Name: "Alice B", Role: "editor", PrevRole: "editor"}, b.mutations[0])
	assert.Equal(t, modeNormal, m.mode)
	assert.Equal(t, 2, b.queries)
}

func TestReloadAndQuit(t *testing.T) {
	b := &stubBridge{rows: rows}
	m := started(t, b)

	m = press(t, m, "ctrl+r")
	assert.Equal(t, 2, b.queries)

	next, cmd := m.Update(key("q"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.vm.Mounted())
}

func TestDeleteTargetsRowChosenBeforeReload(t *testing.T) {
	b := &stubBridge{rows: []domain.UserRow{
		{ID: "alice", Name: "Alice", Role: "editor"},
		{ID: "bob", Name: "Bob", Role: "editor"},
		{ID: "carol", Name: "Carol", Role: "guest"},
	}}
	m := started(t, b)
	m = press(t, m, "down")

	// 刷新发出但结果尚未回来
	next, reload := m.Update(key("ctrl+r"))
	m = next.(Model)
	m = press(t, m, "d")
	require.Equal(t, modeConfirmDel, m.mode)
	assert.Contains(t, m.View(), `"bob"`)

	b.rows = []domain.UserRow{b.rows[0], b.rows[2]}
	m = settle(t, m, reload)
	assert.Contains(t, m.View(), `"bob"`)

	m = press(t, m, "enter")
	assert.Equal(t, []string{"bob"}, b.deleted)
	assert.Equal(t, modeNormal, m.mode)
}
