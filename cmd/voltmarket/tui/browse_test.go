package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/voltmarket/internal/api"
	"github.com/tair/voltmarket/internal/domain"
	"github.com/tair/voltmarket/internal/session"
	"github.com/tair/voltmarket/internal/viewmodel"
)

func newTestModel(t *testing.T) BrowseModel {
	t.Helper()

	sessions := session.NewManager(session.NewMemoryStore())
	client, err := api.NewClient(api.Config{BaseURL: "http://127.0.0.1:1/api/"}, sessions)
	require.NoError(t, err)

	// a long debounce keeps key presses from reaching the network
	catalog := viewmodel.NewCatalogController(client, sessions, viewmodel.Timing{SearchDebounce: time.Minute})
	t.Cleanup(catalog.Close)

	return NewBrowseModel(context.Background(), catalog, make(chan viewmodel.CatalogState))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m BrowseModel, keys ...string) BrowseModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(BrowseModel)
	}
	return m
}

func catalogState() viewmodel.CatalogState {
	cat := "Tools"
	return viewmodel.CatalogState{
		Products: []domain.Product{
			{ID: 1, Name: "Drill", Price: 1500, Stock: 3, Active: true, CategoryName: &cat},
			{ID: 2, Name: "Saw", Price: 800, Stock: 0, Active: true},
		},
		Categories: []domain.Category{{ID: 10, Name: "Tools"}, {ID: 20, Name: "Garden"}},
	}
}

func TestProductItem(t *testing.T) {
	cat := "Tools"
	item := ProductItem{Product: domain.Product{Name: "Drill", Price: 12500, Stock: 4, CategoryName: &cat}}

	assert.Equal(t, "Drill", item.Title())
	assert.Equal(t, "$12,500 · stock 4 · Tools", item.Description())
	assert.Equal(t, "Drill", item.FilterValue())
}

func TestBrowseModel_StateFillsList(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.View(), "No products found")

	next, cmd := m.Update(stateMsg(catalogState()))
	m = next.(BrowseModel)

	assert.NotNil(t, cmd)
	assert.Len(t, m.list.Items(), 2)
	assert.Contains(t, m.View(), "Garden")
}

func TestBrowseModel_CategoryCycling(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(stateMsg(catalogState()))
	m = next.(BrowseModel)

	m = press(m, "tab")
	require.Equal(t, ModeList, m.mode)
	assert.Nil(t, m.selectedCategory())

	m = press(m, "]")
	require.NotNil(t, m.selectedCategory())
	assert.Equal(t, int64(10), *m.selectedCategory())

	m = press(m, "]", "]")
	assert.Nil(t, m.selectedCategory(), "wraps back to every category")

	m = press(m, "[")
	require.NotNil(t, m.selectedCategory())
	assert.Equal(t, int64(20), *m.selectedCategory())
}

func TestBrowseModel_DetailNavigation(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(stateMsg(catalogState()))
	m = next.(BrowseModel)

	m = press(m, "tab")
	next, cmd := m.Update(key("enter"))
	m = next.(BrowseModel)
	assert.Equal(t, ModeDetail, m.mode)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Loading product")

	m = press(m, "esc")
	assert.Equal(t, ModeList, m.mode)

	m = press(m, "/")
	assert.Equal(t, ModeSearch, m.mode)
}
