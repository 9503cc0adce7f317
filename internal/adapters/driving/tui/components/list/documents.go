// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/omniq-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// DocumentList displays documents in a navigable list.
type DocumentList struct {
	documents []domain.DocumentDescriptor
	selected  int
	offset    int
	styles    *styles.Styles
	width     int
	height    int
}

// NewDocumentList creates a new document list component.
func NewDocumentList(s *styles.Styles) *DocumentList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &DocumentList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *DocumentList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *DocumentList) Update(msg tea.Msg) (*DocumentList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the list.
func (l *DocumentList) View() string {
	if len(l.documents) == 0 {
		return l.styles.Muted.Render("No documents")
	}

	nameWidth := l.width - 30
	if nameWidth < 10 {
		nameWidth = 10
	}

	lines := make([]string, 0, l.visibleCount()+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("  %-*s %-12s %10s", nameWidth, "Name", "Status", "Size")))

	end := min(l.offset+l.visibleCount(), len(l.documents))
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderDocument(i, &l.documents[i], nameWidth))
	}

	if len(l.documents) > l.visibleCount() {
		lines = append(lines, l.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", l.offset+1, end, len(l.documents))))
	}
	return strings.Join(lines, "\n")
}

func (l *DocumentList) renderDocument(index int, doc *domain.DocumentDescriptor, nameWidth int) string {
	name := doc.Name
	if r := []rune(name); len(r) > nameWidth {
		name = string(r[:nameWidth-3]) + "..."
	}
	size := humanize.Bytes(uint64(max(doc.Size, 0)))

	if index == l.selected {
		return l.styles.Selected.Render(fmt.Sprintf("> %-*s %-12s %10s", nameWidth, name, doc.Status, size))
	}
	return l.styles.Normal.Render(fmt.Sprintf("  %-*s ", nameWidth, name)) +
		l.styles.Muted.Render(fmt.Sprintf("%-12s %10s", doc.Status, size))
}

func (l *DocumentList) visibleCount() int {
	// Header and scroll indicator
	n := l.height - 2
	if n < 1 {
		n = 1
	}
	return n
}

func (l *DocumentList) adjustScroll() {
	visible := l.visibleCount()
	if l.selected < l.offset {
		l.offset = l.selected
	} else if l.selected >= l.offset+visible {
		l.offset = l.selected - visible + 1
	}
}

// SetDocuments replaces the list, keeping the selection in range.
func (l *DocumentList) SetDocuments(docs []domain.DocumentDescriptor) {
	l.documents = docs
	if l.selected >= len(docs) {
		l.selected = max(len(docs)-1, 0)
	}
	l.offset = 0
	l.adjustScroll()
}

// Documents returns the listed documents.
func (l *DocumentList) Documents() []domain.DocumentDescriptor {
	return l.documents
}

// Selected returns the index of the selected document.
func (l *DocumentList) Selected() int {
	return l.selected
}

// SelectedDocument returns the selected document, or nil if none.
func (l *DocumentList) SelectedDocument() *domain.DocumentDescriptor {
	if l.selected < 0 || l.selected >= len(l.documents) {
		return nil
	}
	return &l.documents[l.selected]
}

// MoveUp moves selection up.
func (l *DocumentList) MoveUp() {
	if l.selected > 0 {
		l.selected--
		l.adjustScroll()
	}
}

// MoveDown moves selection down.
func (l *DocumentList) MoveDown() {
	if l.selected < len(l.documents)-1 {
		l.selected++
		l.adjustScroll()
	}
}

// SetDimensions sets the component dimensions.
func (l *DocumentList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
	l.adjustScroll()
}

// Count returns the number of documents.
func (l *DocumentList) Count() int {
	return len(l.documents)
}
