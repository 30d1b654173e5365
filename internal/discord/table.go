package discord

import "strings"

// Justify controls column alignment.
type Justify int

const (
	JustifyLeft Justify = iota
	JustifyRight
	JustifyCenter
)

// Heading is one table column.
type Heading struct {
	Label   string
	Justify Justify
}

// Table renders rows as a monospace box-drawing table, meant to be sent
// inside a code block.
type Table struct {
	headings []Heading
	padding  int
	rows     [][]string
	maxLen   []int
}

func NewTable(headings []Heading) *Table {
	maxLen := make([]int, len(headings))
	for i, h := range headings {
		maxLen[i] = len([]rune(h.Label))
	}
	return &Table{headings: headings, padding: 1, maxLen: maxLen}
}

func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
	for i, cell := range cells {
		if i >= len(t.maxLen) {
			break
		}
		if n := len([]rune(cell)); n > t.maxLen[i] {
			t.maxLen[i] = n
		}
	}
}

func (t *Table) colWidth(col int) int {
	return t.maxLen[col] + t.padding*2
}

func (t *Table) String() string {
	var buff strings.Builder
	padding := strings.Repeat(" ", t.padding)

	t.writeRule(&buff, "┏", "━", "┳", "┓")

	for col, heading := range t.headings {
		buff.WriteString("┃" + padding + pad(heading.Label, t.maxLen[col], JustifyLeft) + padding)
	}
	buff.WriteString("┃\n")

	t.writeRule(&buff, "┡", "━", "╇", "┩")

	for _, row := range t.rows {
		for col, cell := range row {
			buff.WriteString("│" + padding + pad(cell, t.maxLen[col], t.headings[col].Justify) + padding)
		}
		buff.WriteString("│\n")
	}

	buff.WriteString("└")
	for col := range t.headings {
		buff.WriteString(strings.Repeat("─", t.colWidth(col)))
		if col < len(t.headings)-1 {
			buff.WriteString("┴")
		} else {
			buff.WriteString("┘")
		}
	}

	return buff.String()
}

func (t *Table) writeRule(buff *strings.Builder, left, fill, mid, right string) {
	buff.WriteString(left)
	for col := range t.headings {
		buff.WriteString(strings.Repeat(fill, t.colWidth(col)))
		if col < len(t.headings)-1 {
			buff.WriteString(mid)
		} else {
			buff.WriteString(right)
		}
	}
	buff.WriteString("\n")
}

func pad(s string, width int, justify Justify) string {
	gap := width - len([]rune(s))
	if gap <= 0 {
		return s
	}
	switch justify {
	case JustifyRight:
		return strings.Repeat(" ", gap) + s
	case JustifyCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	}
	return s + strings.Repeat(" ", gap)
}
