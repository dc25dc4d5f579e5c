package table

import (
	"fmt"
	"io"
	"strings"

	pretty "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Decorator оформляет текст ячейки (например, цветом).
// row равен -1 для строки заголовков. Escape-последовательности
// при выравнивании не учитываются.
type Decorator func(row, col int, text string) string

// textStyle - колонки без рамок, разделенные двумя пробелами
func textStyle() pretty.Style {
	style := pretty.StyleDefault
	style.Name = "taskboard"
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = "  "
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	style.Options = pretty.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  false,
		SeparateHeader:  false,
		SeparateRows:    false,
	}
	return style
}

// WriteText выводит представление выровненными колонками.
// Пустая таблица выводится строкой заголовков и строкой с EmptyText.
func WriteText(w io.Writer, v View, decorate Decorator) error {
	if decorate == nil {
		decorate = func(_, _ int, text string) string { return text }
	}

	tw := pretty.NewWriter()
	tw.SetStyle(textStyle())

	header := make(pretty.Row, len(v.Headers))
	configs := make([]pretty.ColumnConfig, len(v.Headers))
	for i, h := range v.Headers {
		label := h.Label
		switch h.Sorted {
		case "asc":
			label += " ^"
		case "desc":
			label += " v"
		}
		header[i] = decorate(-1, i, label)
		configs[i] = pretty.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for r, row := range v.Rows {
		cells := make(pretty.Row, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = decorate(r, i, cell)
		}
		tw.AppendRow(cells)
	}

	var out strings.Builder
	for _, line := range strings.Split(tw.Render(), "\n") {
		out.WriteString(strings.TrimRight(line, " "))
		out.WriteByte('\n')
	}

	if v.Empty {
		out.WriteString(v.EmptyText)
		out.WriteByte('\n')
	} else if v.Page.Count > 1 {
		fmt.Fprintf(&out, "page %d/%d, %d rows\n", v.Page.Index+1, v.Page.Count, v.Page.Total)
	}

	_, err := io.WriteString(w, out.String())
	return err
}
