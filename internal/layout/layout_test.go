package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campuskit/rollcall/internal/domain"
)

func batch(headers []string, records ...domain.AttendanceRecord) domain.AttendanceBatch {
	return domain.AttendanceBatch{Headers: headers, Records: records}
}

func TestDisplayHeader(t *testing.T) {
	assert.Equal(t, "Roll No", DisplayHeader("rollNo"))
	assert.Equal(t, "Name", DisplayHeader("name"))
	assert.Equal(t, "Attendance Percentage", DisplayHeader("attendancePercentage"))
	assert.Equal(t, "", DisplayHeader(""))
}

func TestWidths_EmptyBatch(t *testing.T) {
	model := Widths(domain.AttendanceBatch{})

	assert.Empty(t, model)
}

func TestWidths_HeaderDrivenMinimum(t *testing.T) {
	// "Roll No" is 7 runes: 7*10+24 = 94, clamped up to 100.
	model := Widths(batch([]string{"rollNo"}, domain.AttendanceRecord{"rollNo": "7"}))

	assert.Equal(t, 100, model["rollNo"])
}

func TestWidths_LongestValueWins(t *testing.T) {
	model := Widths(batch([]string{"name", "pct"},
		domain.AttendanceRecord{"name": "Ann", "pct": "92"},
		domain.AttendanceRecord{"name": "Alexandria", "pct": "5"},
	))

	// "Alexandria" is 10 runes: 10*8+24 = 104, inside [100,200].
	assert.Equal(t, 104, model["name"])
	assert.Equal(t, 100, model["pct"])
}

func TestWidths_ClampedToMaximum(t *testing.T) {
	model := Widths(batch([]string{"remark"},
		domain.AttendanceRecord{"remark": "a very long free-text remark that would dominate the viewport"},
	))

	assert.Equal(t, 200, model["remark"])
}

func TestWidths_RowOrderIndependent(t *testing.T) {
	first := domain.AttendanceRecord{"name": "Ann", "present": true, "pct": 92.5}
	second := domain.AttendanceRecord{"name": "Alexandria", "present": false, "pct": 5.0}
	headers := []string{"name", "present", "pct"}

	forward := Widths(batch(headers, first, second))
	reversed := Widths(batch(headers, second, first))

	assert.Equal(t, forward, reversed)
}

func TestWidths_MissingKeysIgnored(t *testing.T) {
	model := Widths(batch([]string{"name", "pct"},
		domain.AttendanceRecord{"name": "Ann", "pct": "92"},
		domain.AttendanceRecord{"name": "Bo"},
	))

	assert.Contains(t, model, "pct")
	assert.Equal(t, 100, model["pct"])
}

func TestWidths_DeterministicAcrossCalls(t *testing.T) {
	b := batch([]string{"rollNo", "name"},
		domain.AttendanceRecord{"rollNo": 42.0, "name": "Ann"},
	)

	assert.Equal(t, Widths(b), Widths(b))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "hello", Stringify("hello"))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "92", Stringify(92.0))
	assert.Equal(t, "92.5", Stringify(92.5))
	assert.Equal(t, "42", Stringify(42))
	assert.Equal(t, "", Stringify(nil))
}
