package tui

import (
	"context"
	"fmt"
	"text/template"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonpukusan/blog-parts-json-manager/internal/item"
	"github.com/tonpukusan/blog-parts-json-manager/pkg/itemload"
)

// BatchMsg delivers one flushed batch to the browser.
type BatchMsg struct {
	Batch itemload.Batch
}

// DoneMsg reports that the load finished. Err is nil on success.
type DoneMsg struct {
	Err error
}

// recordItem implements list.Item for a loaded record.
type recordItem struct {
	rec  itemload.ItemRecord
	item item.Item
}

// newRecordItem decodes rec once. Failed or malformed records keep a zero
// item and show under the no-brand key.
func newRecordItem(rec itemload.ItemRecord) recordItem {
	it, _ := item.Decode(rec)
	return recordItem{rec: rec, item: it}
}

func (i recordItem) Title() string {
	if i.rec.Failed() {
		return "✗ " + i.rec.File
	}
	if i.item.Title == "" {
		return i.rec.File
	}
	return i.item.Title
}

func (i recordItem) Description() string {
	if reason := i.rec.Err(); reason != "" {
		return reason
	}
	return i.rec.File
}

func (i recordItem) FilterValue() string {
	return i.item.Title + " " + i.rec.File + " " + i.item.Desc
}

// Model is the bubbletea model of the browser.
type Model struct {
	list    list.Model
	records []itemload.ItemRecord
	decoded []recordItem
	baseURL string
	embed   *template.Template
	copy    func(string) error

	total  int
	failed int
	brands item.BrandSet
	brand  int // index into brands; -1 shows every brand
	done   bool
	err    error
	status string
	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		m.copy = write
	}
}

// New creates a browser for a manifest of total files under baseURL.
func New(baseURL string, total int, embed *template.Template, opts ...Option) *Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Blog parts"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	m := &Model{
		list:    l,
		baseURL: baseURL,
		embed:   embed,
		copy:    clipboard.WriteAll,
		total:   total,
		brand:   -1,
		status:  "Loading...",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := msg.Height - 4
		if listHeight < 5 {
			listHeight = msg.Height
		}
		m.list.SetSize(msg.Width, listHeight)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "c":
			m.copyEmbedTag()
			return m, nil
		case "a":
			m.copyAmazonURL()
			return m, nil
		case "b":
			return m, m.cycleBrand()
		}

	case BatchMsg:
		return m, m.addBatch(msg.Batch)

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		if msg.Err != nil {
			m.status = fmt.Sprintf("Load stopped: %v", msg.Err)
		} else {
			m.status = fmt.Sprintf("Loaded %d items (%d failed)", len(m.records), m.failed)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#6BCB77"))
	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888"))
	errStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF6B6B"))

	brand := "all"
	if b := m.currentBrand(); b != "" {
		brand = b
	}
	header := headerStyle.Render(fmt.Sprintf("%d / %d items | brand: %s", len(m.records), m.total, brand))

	status := statusStyle.Render(m.status)
	if m.err != nil || m.failed > 0 {
		status += "  " + errStyle.Render(fmt.Sprintf("%d failed", m.failed))
	}
	help := statusStyle.Render("/ filter • b brand • c copy embed tag • a copy amazon link • q quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), status, help)
}

// Records returns every record received so far, in arrival order.
func (m *Model) Records() []itemload.ItemRecord {
	return m.records
}

// addBatch decodes the new records and appends those passing the brand
// filter to the list. Records already shown are left alone.
func (m *Model) addBatch(batch itemload.Batch) tea.Cmd {
	current := m.currentBrand()

	var cmds []tea.Cmd
	for _, rec := range batch {
		if rec.Failed() {
			m.failed++
		}
		ri := newRecordItem(rec)
		m.records = append(m.records, rec)
		m.decoded = append(m.decoded, ri)
		m.brands.Add(ri.item.BrandKey())

		if current == "" || ri.item.BrandKey() == current {
			cmds = append(cmds, m.list.InsertItem(len(m.list.Items()), ri))
		}
	}
	// A new brand may sort ahead of the selected one.
	if current != "" {
		m.brand = m.brands.Index(current)
	}

	m.status = fmt.Sprintf("Loaded %d / %d", len(m.records), m.total)
	return tea.Batch(cmds...)
}

func (m *Model) currentBrand() string {
	keys := m.brands.Keys()
	if m.brand < 0 || m.brand >= len(keys) {
		return ""
	}
	return keys[m.brand]
}

func (m *Model) cycleBrand() tea.Cmd {
	m.brand++
	if m.brand >= len(m.brands.Keys()) {
		m.brand = -1
	}
	return m.refresh()
}

// refresh rebuilds the list from the decoded records passing the brand
// filter.
func (m *Model) refresh() tea.Cmd {
	brand := m.currentBrand()
	items := make([]list.Item, 0, len(m.decoded))
	for _, ri := range m.decoded {
		if brand == "" || ri.item.BrandKey() == brand {
			items = append(items, ri)
		}
	}
	return m.list.SetItems(items)
}

func (m *Model) selected() (recordItem, bool) {
	sel, ok := m.list.SelectedItem().(recordItem)
	return sel, ok
}

func (m *Model) copyEmbedTag() {
	sel, ok := m.selected()
	if !ok {
		return
	}
	tag, err := item.EmbedTag(m.embed, m.baseURL, sel.rec.File)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.write(tag, "embed tag")
}

func (m *Model) copyAmazonURL() {
	sel, ok := m.selected()
	if !ok {
		return
	}
	if sel.item.AURL == "" {
		m.status = "No Amazon link for " + sel.rec.File
		return
	}
	m.write(sel.item.AURL, "Amazon link")
}

func (m *Model) write(text, what string) {
	if err := m.copy(text); err != nil {
		m.status = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.status = "Copied " + what
}

// Run shows the browser while load streams batches into it. Quitting the
// browser cancels the load.
func Run(ctx context.Context, m *Model, load func(context.Context, itemload.BatchFunc) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		err := load(ctx, func(batch itemload.Batch) error {
			p.Send(BatchMsg{Batch: batch})
			return nil
		})
		p.Send(DoneMsg{Err: err})
	}()

	_, err := p.Run()
	return err
}
