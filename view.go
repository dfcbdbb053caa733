package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"marlin/internal/state"
)

const headerHeight = 1
const statusHeight = 1

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	modeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	markedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dirStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	matchStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(lipgloss.Color("238"))
)

func (m *model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var body string
	switch mode := m.app.Mode.(type) {
	case state.Help:
		body = m.renderHelp()
	case state.SearchResults:
		body = m.renderSearchResults(mode)
	default:
		body = m.renderColumns()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusBar(),
	)
}

func (m *model) bodyHeight() int {
	h := m.height - headerHeight - statusHeight
	if h < 3 {
		h = 3
	}
	return h
}

func (m *model) parentWidth() int  { return m.width / 5 }
func (m *model) currentWidth() int { return m.width * 2 / 5 }
func (m *model) previewWidth() int {
	w := m.width - m.parentWidth() - m.currentWidth() - 2
	if w < 20 {
		w = 20
	}
	return w
}

func (m *model) renderHeader() string {
	left := headerStyle.Render(m.app.Nav.CurrentPath)
	if idx, n := m.app.TabPosition(); n > 1 {
		left = modeStyle.Render(fmt.Sprintf("[%d/%d] ", idx, n)) + left
	}
	right := modeStyle.Render(modeLabel(m.app.Mode)) + dimStyle.Render("  "+sortLabel(m.app.Sort))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func modeLabel(mode state.Mode) string {
	switch mode.(type) {
	case state.Normal:
		return "NORMAL"
	case state.Visual:
		return "VISUAL"
	case state.Filtering:
		return "FILTER"
	case state.Command:
		return "COMMAND"
	case state.Rename:
		return "RENAME"
	case state.SearchInput, state.SearchResults:
		return "SEARCH"
	case state.DeleteConfirm:
		return "DELETE?"
	case state.BookmarkJump:
		return "BOOKMARK"
	case state.Help:
		return "HELP"
	}
	return ""
}

func sortLabel(opts state.SortOptions) string {
	by := [...]string{"name", "size", "modified", "ext"}[opts.By]
	dir := "↑"
	if !opts.Ascending {
		dir = "↓"
	}
	return by + dir
}

func (m *model) renderColumns() string {
	height := m.bodyHeight()
	parent := m.renderParentPane(m.parentWidth(), height)
	current := m.renderCurrentPane(m.currentWidth(), height)
	previewPane := m.renderPreviewPane(m.previewWidth(), height)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		paneStyle.Height(height).Render(parent),
		paneStyle.Height(height).Render(current),
		lipgloss.NewStyle().Height(height).Render(previewPane),
	)
}

func (m *model) renderParentPane(width, height int) string {
	lines := make([]string, 0, height)
	for i, e := range m.app.Entries.Parent {
		if i >= height {
			break
		}
		name := truncate(e.Icon()+" "+e.DisplayName(), width)
		if e.Path == m.app.Nav.CurrentPath {
			lines = append(lines, cursorStyle.Render(name))
		} else if e.IsDir {
			lines = append(lines, dirStyle.Render(name))
		} else {
			lines = append(lines, dimStyle.Render(name))
		}
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m *model) renderCurrentPane(width, height int) string {
	visible := m.app.Entries.Visible
	if len(visible) == 0 {
		text := "(empty)"
		if m.app.FilterText != "" {
			text = "(no matches)"
		}
		return lipgloss.NewStyle().Width(width).Render(dimStyle.Render(text))
	}

	// Keep the cursor on screen.
	offset := 0
	if m.app.Sel.Cursor >= height {
		offset = m.app.Sel.Cursor - height + 1
	}

	lines := make([]string, 0, height)
	for i := offset; i < len(visible) && i-offset < height; i++ {
		e := visible[i]
		mark := " "
		if _, ok := m.app.Sel.Multi[e.Path]; ok {
			mark = "•"
		}
		size := ""
		if !e.IsDir {
			size = "  " + humanize.Bytes(uint64(e.Size))
		}
		line := truncate(fmt.Sprintf("%s%s %s%s", mark, e.Icon(), e.DisplayName(), size), width)
		switch {
		case i == m.app.Sel.Cursor:
			line = cursorStyle.Render(line)
		case mark == "•":
			line = markedStyle.Render(line)
		case e.IsDir:
			line = dirStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (m *model) renderPreviewPane(width, height int) string {
	content := m.previewContent
	if ent, ok := m.app.CursorEntry(); !ok || ent.Path != m.previewPath {
		content = dimStyle.Render("…")
	}
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		lines[i] = truncate(line, width)
	}
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(strings.Join(lines, "\n"))
}

func (m *model) renderSearchResults(mode state.SearchResults) string {
	height := m.bodyHeight()
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n",
		headerStyle.Render("results for"), matchStyle.Render(mode.Query))

	offset := 0
	if mode.Selected >= height-2 {
		offset = mode.Selected - height + 3
	}
	for i := offset; i < len(mode.Results) && i-offset < height-2; i++ {
		r := mode.Results[i]
		line := fmt.Sprintf("%s:%d  %s", r.Name, r.LineNumber, highlightMatch(r))
		line = truncate(line, m.width-2)
		if i == mode.Selected {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if len(mode.Results) == 0 {
		b.WriteString(dimStyle.Render("no matches"))
	}
	return lipgloss.NewStyle().Height(height).Render(b.String())
}

// highlightMatch emphasizes the matched span within the result line.
// The offsets are byte offsets validated by the search engine, so
// slicing here stays on character boundaries.
func highlightMatch(r state.SearchResult) string {
	if r.MatchStart < 0 || r.MatchEnd > len(r.Line) || r.MatchStart >= r.MatchEnd {
		return r.Line
	}
	return r.Line[:r.MatchStart] +
		matchStyle.Render(r.Line[r.MatchStart:r.MatchEnd]) +
		r.Line[r.MatchEnd:]
}

func (m *model) renderStatusBar() string {
	if state.IsTextEntry(m.app.Mode) {
		return m.input.View()
	}
	if _, ok := m.app.Mode.(state.DeleteConfirm); ok {
		n := len(m.app.Sel.Multi)
		if n == 0 {
			n = 1
		}
		return errorStyle.Render(fmt.Sprintf("delete %d item(s)? (y/n)", n))
	}
	if _, ok := m.app.Mode.(state.BookmarkJump); ok {
		return infoStyle.Render("jump to bookmark: press a key (esc to cancel)")
	}
	if m.app.SearchInProgress {
		return infoStyle.Render(fmt.Sprintf("searching… %d files scanned", m.app.FilesScanned))
	}
	if msg := m.app.Status; msg != nil && !msg.Expired(time.Now()) {
		if msg.Kind == state.StatusError {
			return errorStyle.Render(msg.Text)
		}
		return infoStyle.Render(msg.Text)
	}

	parts := []string{fmt.Sprintf("%d items", len(m.app.Entries.Visible))}
	if m.app.FilterText != "" {
		parts = append(parts, fmt.Sprintf("filter: %s", m.app.FilterText))
	}
	if !m.app.Clip.IsEmpty() {
		op := "copy"
		if m.app.Clip.Op == state.OpCut {
			op = "cut"
		}
		parts = append(parts, fmt.Sprintf("clipboard: %d (%s)", len(m.app.Clip.Paths), op))
	}
	if len(m.app.Sel.Multi) > 0 {
		parts = append(parts, fmt.Sprintf("%d marked", len(m.app.Sel.Multi)))
	}
	return dimStyle.Render(strings.Join(parts, "  ·  "))
}

func (m *model) renderHelp() string {
	help := `
  j/k       move cursor          /      filter entries
  gg/G      top / bottom         :      command (:q :mkdir :touch)
  h/l       parent / enter       S      content search
  H/L       history back/fwd     '      bookmark jump
  v         visual (multi)       space  toggle mark
  y/x/p     yank / cut / paste   d      delete (confirm)
  r         rename               .      toggle hidden
  s/o/O     sort by/order/dirs   R      reload
  t/T       new / close tab      tab    next tab (shift+tab prev)
  ?         this help            esc    clear marks/message
`
	return lipgloss.NewStyle().Height(m.bodyHeight()).Render(
		headerStyle.Render("  keys") + "\n" + help)
}

// truncate clips s to width display cells, never splitting a rune.
func truncate(s string, width int) string {
	if width <= 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width-1, "…")
}
