package diag

import (
	"strings"
)

// FormatShort renders one line per diagnostic:
//
//	SEVERITY CODE#### path: message [value]
//
// Notes follow on indented lines. The bag is not reordered.
func FormatShort(items []Diagnostic, includeNotes bool) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range items {
		sb.WriteString(d.Severity.String())
		sb.WriteByte(' ')
		sb.WriteString(d.Code.ID())
		sb.WriteByte(' ')
		if d.Path != "" {
			sb.WriteString(d.Path)
			sb.WriteString(": ")
		}
		sb.WriteString(d.Message)
		if d.Value != "" {
			sb.WriteString(" [")
			sb.WriteString(d.Value)
			sb.WriteString("]")
		}
		sb.WriteByte('\n')
		if includeNotes {
			for _, n := range d.Notes {
				sb.WriteString("  note: ")
				if n.Path != "" {
					sb.WriteString(n.Path)
					sb.WriteString(": ")
				}
				sb.WriteString(n.Msg)
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
