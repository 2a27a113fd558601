package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"pasajes-cli/fare"
	"pasajes-cli/seatmap"
	"pasajes-cli/service"
)

type seatCell struct {
	token  string
	label  string
	status seatmap.Status
	cursor bool
	filled bool
}

func (m appModel) renderSeatMap() string {
	if len(m.view.Seats) == 0 {
		return m.emptySeatMapView()
	}

	rows, cols := 0, 0
	for _, seat := range m.view.Seats {
		rows = max(rows, seat.Row)
		cols = max(cols, seat.Column)
	}
	if rows == 0 || cols == 0 {
		return "No seat map data."
	}

	grid := make([][]seatCell, rows)
	for i := range grid {
		grid[i] = make([]seatCell, cols)
	}
	available, reserved := 0, 0
	for _, seat := range m.view.Seats {
		r := seat.Row - 1
		c := seat.Column - 1
		if r < 0 || c < 0 {
			continue
		}
		switch seat.Status {
		case seatmap.StatusAvailable:
			available++
		case seatmap.StatusReserved:
			reserved++
		}
		grid[r][c] = seatCell{
			token:  seatToken(seat.Status),
			label:  strconv.Itoa(seat.SeatNumber),
			status: seat.Status,
			cursor: seat.SeatNumber == m.cursor,
			filled: true,
		}
	}

	rowWidth := len(strconv.Itoa(rows))
	cellWidth := 2
	if m.showSeatNumbers {
		for _, seat := range m.view.Seats {
			cellWidth = max(cellWidth, len(strconv.Itoa(seat.SeatNumber)))
		}
	}
	gridWidth := cols*(cellWidth+1) - 1

	frontStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("214"))
	frontBorderStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Background(lipgloss.Color("236"))
	front := frontBarBlock(gridWidth, "FRONT")

	var b strings.Builder
	indent := strings.Repeat(" ", rowWidth+1)
	b.WriteString(indent + frontBorderStyle.Render(front.top) + "\n")
	b.WriteString(indent + frontStyle.Render(front.mid) + "\n")
	b.WriteString(indent + frontBorderStyle.Render(front.bot) + "\n\n")

	seatStyleAvailable := lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	seatStyleReserved := lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	seatStyleSelected := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Bold(true)

	for r := 0; r < rows; r++ {
		label := strconv.Itoa(r + 1)
		b.WriteString(fmt.Sprintf("%*s ", rowWidth, label))
		for c := 0; c < cols; c++ {
			cell := grid[r][c]
			text := cell.token
			if m.showSeatNumbers && cell.label != "" {
				text = cell.label
			}
			rendered := padCell(text, cellWidth)
			if cell.filled {
				style := seatStyleAvailable
				switch cell.status {
				case seatmap.StatusReserved:
					style = seatStyleReserved
				case seatmap.StatusSelected:
					style = seatStyleSelected
				}
				if cell.cursor {
					style = style.Reverse(true).Underline(true)
				}
				rendered = style.Render(rendered)
			}
			b.WriteString(rendered)
			if c < cols-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString(fmt.Sprintf(" %*s\n", rowWidth, label))
	}
	b.WriteString("\n")

	legend := "Legend: [] available • XX reserved • <> selected"
	if m.showSeatNumbers {
		legend = "Legend: green available • red reserved • highlighted selected"
	}
	counts := fmt.Sprintf("Available: %d • Reserved: %d • Selected: %d • Total: %s",
		available, reserved, m.view.SelectedCount, formatPrice(m.view.Total))

	out := b.String() + hint(legend) + "\n" + counts
	if info := m.cursorInfo(); info != "" {
		out += "\n" + info
	}
	if warn := m.fetchWarnings(); warn != "" {
		out += "\n" + warn
	}
	return out
}

func (m appModel) emptySeatMapView() string {
	layoutErr, _ := m.engine.Errors()
	switch {
	case service.IsNotFound(layoutErr):
		return "Seats unavailable for this bus.\n\n" + hint("Press esc to go back.")
	case layoutErr != nil:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("Could not load seats: "+layoutErr.Error()) +
			"\n\n" + hint("Press r to retry.")
	case len(m.engine.Layout().Seats) > 0:
		return "No seats on this floor.\n\n" + hint("Press f to switch floor.")
	default:
		return "No seat map data."
	}
}

func (m appModel) cursorInfo() string {
	seat, ok := m.cursorSeat()
	if !ok {
		return ""
	}
	parts := []string{fmt.Sprintf("Seat %d", seat.SeatNumber), seat.SeatType, formatPrice(seat.Price)}
	switch seat.Match {
	case fare.MatchFallback:
		parts = append(parts, "fallback price")
	case fare.MatchFirstAny:
		parts = append(parts, "generic fare")
	}
	if seat.Status == seatmap.StatusReserved {
		parts = append(parts, "reserved")
	}
	return hint(strings.Join(parts, " • "))
}

// fetchWarnings reports failed sources of the last refresh; the map keeps
// showing whatever could be loaded.
func (m appModel) fetchWarnings() string {
	layoutErr, fareErr := m.engine.Errors()
	var warnings []string
	if layoutErr != nil {
		warnings = append(warnings, "Seat layout unavailable")
	}
	if fareErr != nil {
		warnings = append(warnings, "Fares unavailable, fallback price in use")
	}
	if len(warnings) == 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(strings.Join(warnings, " • ") + ". Press r to retry.")
}

func (m appModel) cursorSeat() (seatmap.PricedSeat, bool) {
	for _, seat := range m.view.Seats {
		if seat.SeatNumber == m.cursor {
			return seat, true
		}
	}
	return seatmap.PricedSeat{}, false
}

// keepCursor leaves the cursor on its seat when it is still on the floor,
// otherwise moves it to the first free seat.
func (m *appModel) keepCursor() {
	if _, ok := m.cursorSeat(); ok {
		return
	}
	m.cursor = 0
	for _, seat := range m.view.Seats {
		if seat.Status != seatmap.StatusReserved {
			m.cursor = seat.SeatNumber
			return
		}
	}
	if len(m.view.Seats) > 0 {
		m.cursor = m.view.Seats[0].SeatNumber
	}
}

// moveCursor steps through seats in reading order horizontally and to the
// closest column of the nearest populated row vertically.
func (m *appModel) moveCursor(dRow int, dCol int) {
	seats := m.view.Seats
	if len(seats) == 0 {
		return
	}
	index := -1
	for i, seat := range seats {
		if seat.SeatNumber == m.cursor {
			index = i
			break
		}
	}
	if index < 0 {
		m.keepCursor()
		return
	}
	current := seats[index]

	if dCol != 0 {
		next := index + dCol
		if next >= 0 && next < len(seats) {
			m.cursor = seats[next].SeatNumber
		}
		return
	}

	targetRow := 0
	for _, seat := range seats {
		if dRow > 0 && seat.Row > current.Row && (targetRow == 0 || seat.Row < targetRow) {
			targetRow = seat.Row
		}
		if dRow < 0 && seat.Row < current.Row && seat.Row > targetRow {
			targetRow = seat.Row
		}
	}
	if targetRow == 0 {
		return
	}
	best, bestDist := -1, 0
	for i, seat := range seats {
		if seat.Row != targetRow {
			continue
		}
		dist := abs(seat.Column - current.Column)
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best >= 0 {
		m.cursor = seats[best].SeatNumber
	}
}

func seatToken(status seatmap.Status) string {
	switch status {
	case seatmap.StatusReserved:
		return "XX"
	case seatmap.StatusSelected:
		return "<>"
	default:
		return "[]"
	}
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

type frontBlock struct {
	top string
	mid string
	bot string
}

func frontBarBlock(width int, label string) frontBlock {
	if width < len(label)+4 {
		width = len(label) + 4
	}
	if width < 10 {
		width = 10
	}

	border := "╭" + strings.Repeat("─", width-2) + "╮"
	bottom := "╰" + strings.Repeat("─", width-2) + "╯"

	labelText := " " + label + " "
	padding := width - len(labelText) - 2
	left := padding / 2
	right := padding - left
	mid := "│" + strings.Repeat(" ", left) + labelText + strings.Repeat(" ", right) + "│"
	return frontBlock{top: border, mid: mid, bot: bottom}
}

func formatPrice(price decimal.Decimal) string {
	if !price.IsPositive() {
		return "-"
	}
	return "$ " + price.StringFixed(2)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
