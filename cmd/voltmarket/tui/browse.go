package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tair/voltmarket/internal/domain"
	"github.com/tair/voltmarket/internal/viewmodel"
)

// BrowseMode is the screen the browser shows
type BrowseMode int

const (
	ModeSearch BrowseMode = iota
	ModeList
	ModeDetail
)

const maxComments = 5

// ProductItem adapts a product to the list component
type ProductItem struct {
	Product domain.Product
}

func (i ProductItem) Title() string { return i.Product.Name }

func (i ProductItem) Description() string {
	d := i.Product.FormattedPrice() + " · stock " + strconv.Itoa(i.Product.Stock)
	if i.Product.CategoryName != nil {
		d += " · " + *i.Product.CategoryName
	}
	return d
}

func (i ProductItem) FilterValue() string { return i.Product.Name }

// BrowseModel is the Bubbletea model of the interactive product browser.
// It renders CatalogController snapshots and forwards key presses to it.
type BrowseModel struct {
	ctx     context.Context
	catalog *viewmodel.CatalogController
	states  <-chan viewmodel.CatalogState

	mode     BrowseMode
	input    textinput.Model
	list     list.Model
	state    viewmodel.CatalogState
	category int // index into state.Categories; -1 is every category
	width    int
	height   int
}

type stateMsg viewmodel.CatalogState

// NewBrowseModel creates the browser over a catalog controller and its state feed
func NewBrowseModel(ctx context.Context, catalog *viewmodel.CatalogController, states <-chan viewmodel.CatalogState) BrowseModel {
	input := textinput.New()
	input.Placeholder = "Search products"
	input.Prompt = "⌕ "
	input.Focus()

	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return BrowseModel{
		ctx:      ctx,
		catalog:  catalog,
		states:   states,
		mode:     ModeSearch,
		input:    input,
		list:     l,
		category: -1,
	}
}

// Init loads the first page and starts listening for state changes
func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForState(m.states),
		m.run(func(ctx context.Context) {
			m.catalog.LoadCategories(ctx)
			_ = m.catalog.LoadProducts(ctx)
		}),
	)
}

func waitForState(states <-chan viewmodel.CatalogState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-states
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

// run executes a controller call off the UI loop; its outcome arrives as a state update
func (m BrowseModel) run(fn func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return nil
	}
}

func (m BrowseModel) selectedCategory() *int64 {
	if m.category < 0 || m.category >= len(m.state.Categories) {
		return nil
	}
	id := m.state.Categories[m.category].ID
	return &id
}

func (m BrowseModel) queueSearch() {
	m.catalog.QueueSearch(m.input.Value(), m.selectedCategory())
}

// Update handles messages
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-8, 10)
		m.list.SetSize(msg.Width-4, max(msg.Height-10, 3))
		return m, nil

	case stateMsg:
		m.state = viewmodel.CatalogState(msg)
		items := make([]list.Item, len(m.state.Products))
		for i, p := range m.state.Products {
			items[i] = ProductItem{Product: p}
		}
		return m, tea.Batch(m.list.SetItems(items), waitForState(m.states))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeList:
			return m.updateList(msg)
		case ModeDetail:
			return m.updateDetail(msg)
		}
	}

	if m.mode == ModeSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m BrowseModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "tab", "down", "esc":
		m.mode = ModeList
		m.input.Blur()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.queueSearch()
	}
	return m, cmd
}

func (m BrowseModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab", "/":
		m.mode = ModeSearch
		return m, m.input.Focus()

	case "[", "]":
		n := len(m.state.Categories)
		if n == 0 {
			return m, nil
		}
		// cycle through -1..n-1
		step := 1
		if msg.String() == "[" {
			step = n
		}
		m.category = (m.category+1+step)%(n+1) - 1
		m.queueSearch()
		return m, nil

	case "enter":
		item, ok := m.list.SelectedItem().(ProductItem)
		if !ok {
			return m, nil
		}
		m.mode = ModeDetail
		id := item.Product.ID
		return m, m.run(func(ctx context.Context) {
			if err := m.catalog.LoadProductDetail(ctx, id); err != nil {
				return
			}
			m.catalog.LoadLikes(ctx, id)
			_ = m.catalog.LoadComments(ctx, id)
		})
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowseModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc", "backspace":
		m.catalog.CloseDetail()
		m.mode = ModeList
		return m, nil

	case "f":
		if p := m.state.SelectedProduct; p != nil {
			id := p.ID
			return m, m.run(func(ctx context.Context) { _ = m.catalog.ToggleFavorite(ctx, id) })
		}

	case "l":
		if p := m.state.SelectedProduct; p != nil {
			id := p.ID
			return m, m.run(func(ctx context.Context) { _ = m.catalog.ToggleLike(ctx, id) })
		}
	}
	return m, nil
}

// View renders the UI
func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("VoltMarket"))
	b.WriteString("\n\n")

	switch m.mode {
	case ModeDetail:
		b.WriteString(m.detailView())
	default:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(m.categoriesView())
		b.WriteString("\n\n")
		switch {
		case m.state.IsLoading && len(m.state.Products) == 0:
			b.WriteString(mutedStyle.Render("Loading products..."))
		case len(m.state.Products) == 0:
			b.WriteString(mutedStyle.Render("No products found"))
		default:
			b.WriteString(m.list.View())
		}
	}

	b.WriteString("\n")
	b.WriteString(m.messageView())
	b.WriteString(m.helpView())
	return b.String()
}

func (m BrowseModel) categoriesView() string {
	chips := []string{chip("All", m.category < 0)}
	for i, c := range m.state.Categories {
		chips = append(chips, chip(c.Name, i == m.category))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func chip(label string, active bool) string {
	if active {
		return activeChipStyle.Render(label) + " "
	}
	return chipStyle.Render(label) + " "
}

func (m BrowseModel) detailView() string {
	p := m.state.SelectedProduct
	if p == nil {
		if m.state.Error != "" {
			return ""
		}
		return mutedStyle.Render("Loading product...")
	}

	var b strings.Builder
	heart := "♡"
	if m.state.IsFavorite {
		heart = successStyle.Render("♥")
	}
	b.WriteString(titleStyle.Render(p.Name) + "  " + heart + "\n\n")
	b.WriteString(field("Price", p.FormattedPrice()))
	b.WriteString(field("Stock", strconv.Itoa(p.Stock)))
	if p.Brand != nil {
		b.WriteString(field("Brand", *p.Brand))
	}
	if p.CategoryName != nil {
		b.WriteString(field("Category", *p.CategoryName))
	}
	likes := m.state.Likes.Text()
	if m.state.Likes.IsLiked {
		likes += " (you)"
	}
	b.WriteString(field("Likes", likes))
	if p.Description != nil && *p.Description != "" {
		b.WriteString("\n" + *p.Description + "\n")
	}

	if n := len(m.state.Comments); n > 0 {
		b.WriteString("\n" + titleStyle.Render(fmt.Sprintf("Comments (%d)", n)) + "\n")
		for _, c := range m.state.Comments[max(n-maxComments, 0):] {
			author := "user " + strconv.FormatInt(c.UserID, 10)
			if c.User != nil {
				author = c.User.FullName()
			}
			b.WriteString(mutedStyle.Render(author+" · "+c.TimeAgo()) + "\n" + c.Content + "\n")
		}
	}
	return boxStyle.Render(b.String())
}

func field(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

func (m BrowseModel) messageView() string {
	switch {
	case m.state.Error != "":
		return errorStyle.Render("✗ "+m.state.Error) + "\n"
	case m.state.SuccessMessage != "":
		return successStyle.Render("✓ "+m.state.SuccessMessage) + "\n"
	}
	return ""
}

func (m BrowseModel) helpView() string {
	var keys []string
	switch m.mode {
	case ModeSearch:
		keys = []string{FormatKey("type", "search"), FormatKey("enter/tab", "results"), FormatKey("ctrl+c", "quit")}
	case ModeList:
		keys = []string{FormatKey("↑/↓", "navigate"), FormatKey("enter", "open"), FormatKey("[/]", "category"), FormatKey("/", "search"), FormatKey("q", "quit")}
	case ModeDetail:
		keys = []string{FormatKey("f", "favorite"), FormatKey("l", "like"), FormatKey("esc", "back"), FormatKey("q", "quit")}
	}
	return helpStyle.Render(strings.Join(keys, " • "))
}

// RunBrowse runs the browser until the user quits or ctx is cancelled
func RunBrowse(ctx context.Context, catalog *viewmodel.CatalogController) error {
	states, cancel := catalog.Subscribe(1)
	defer cancel()

	p := tea.NewProgram(NewBrowseModel(ctx, catalog, states), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
