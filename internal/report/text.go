package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/specialistvlad/dispatchgo/internal/executor"
)

type styles struct {
	header lipgloss.Style
	muted  lipgloss.Style
	ok     lipgloss.Style
	failed lipgloss.Style
}

// newStyles binds the report styles to w, so color is dropped when w is not
// a terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Bold(true),
		muted:  r.NewStyle().Foreground(lipgloss.Color("245")),
		ok:     r.NewStyle().Foreground(lipgloss.Color("42")),
		failed: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// Text writes a human-readable report: one section per send with a line
// per receiver.
func Text(w io.Writer, result *executor.Result, opts Options) error {
	st := newStyles(w)
	var b strings.Builder

	if opts.RunID != "" {
		b.WriteString(st.muted.Render("run "+opts.RunID) + "\n")
	}
	for _, s := range result.Sends {
		title := fmt.Sprintf("%s %v from %v", s.Mode, s.Signal, s.Sender)
		b.WriteString(st.header.Render(title) + " " + st.muted.Render(s.Source) + "\n")
		if len(s.Responses) == 0 && s.Err == nil {
			b.WriteString("  " + st.muted.Render("no receivers") + "\n")
		}
		for _, r := range s.Responses {
			if r.Err != nil {
				b.WriteString("  " + st.failed.Render("✗ "+r.Receiver) + ": " + r.Err.Error() + "\n")
				continue
			}
			b.WriteString("  " + st.ok.Render("✓ "+r.Receiver) + " → " + formatValue(r.Value) + "\n")
		}
		if s.Err != nil {
			b.WriteString("  " + st.failed.Render("stopped") + ": " + s.Err.Error() + "\n")
		}
	}

	if opts.Stats {
		stats := result.Stats
		b.WriteString(st.header.Render("stats") + "\n")
		for _, row := range []struct {
			name  string
			value int
		}{
			{"connects", stats.Connects},
			{"disconnects", stats.Disconnects},
			{"sends", stats.Sends},
			{"senders", stats.Senders},
			{"signals", stats.Signals},
			{"connections", stats.Connections},
			{"tracked senders", stats.TrackedSenders},
			{"back references", stats.BackRefs},
		} {
			fmt.Fprintf(&b, "  %-16s %d\n", row.name, row.value)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
