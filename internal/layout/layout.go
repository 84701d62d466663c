// Package layout computes adaptive column widths for rendering a batch of
// heterogeneous attendance records as a grid.
package layout

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/campuskit/rollcall/internal/domain"
)

// Width constants, in abstract rendering units. Chosen so header labels are
// never truncated at minimum width and no single column dominates the
// viewport.
const (
	headerUnitWidth = 10
	valueUnitWidth  = 8
	padding         = 24
	minWidth        = 100
	maxWidth        = 200
)

// Widths derives the column width model for a record batch. The computation
// is pure and order-independent over rows: for each header the width is the
// maximum of the header-label candidate and every value candidate, clamped
// to [minWidth, maxWidth]. An empty batch yields an empty model, which the
// renderer must treat as "no data" rather than zero-width columns.
func Widths(batch domain.AttendanceBatch) domain.ColumnWidthModel {
	if batch.Empty() {
		return domain.ColumnWidthModel{}
	}

	model := make(domain.ColumnWidthModel, len(batch.Headers))
	for _, header := range batch.Headers {
		width := utf8.RuneCountInString(DisplayHeader(header))*headerUnitWidth + padding
		for _, record := range batch.Records {
			value, ok := record[header]
			if !ok {
				continue
			}
			candidate := utf8.RuneCountInString(Stringify(value))*valueUnitWidth + padding
			if candidate > width {
				width = candidate
			}
		}
		model[header] = clamp(width)
	}
	return model
}

// DisplayHeader turns a camel-case field name into its rendered label:
// a space before each upper-case boundary, first rune capitalized.
// "rollNo" becomes "Roll No".
func DisplayHeader(header string) string {
	var b strings.Builder
	for i, r := range header {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Stringify renders a scalar value in its natural textual representation
// before measuring. JSON decoding hands numbers over as float64.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func clamp(width int) int {
	if width < minWidth {
		return minWidth
	}
	if width > maxWidth {
		return maxWidth
	}
	return width
}
