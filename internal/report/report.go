// Package report renders the outcome of a playbook run as styled text or as
// JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/specialistvlad/dispatchgo/dispatch"
	"github.com/specialistvlad/dispatchgo/internal/executor"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON}

// Options controls what a report includes.
type Options struct {
	RunID string
	// Stats adds the registry statistics.
	Stats bool
}

// Write renders result to w in format.
func Write(w io.Writer, format string, result *executor.Result, opts Options) error {
	switch format {
	case FormatText:
		return Text(w, result, opts)
	case FormatJSON:
		return JSON(w, result, opts)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

type jsonReport struct {
	RunID  string          `json:"run_id,omitempty"`
	Failed bool            `json:"failed"`
	Sends  []jsonSend      `json:"sends"`
	Stats  *dispatch.Stats `json:"stats,omitempty"`
}

type jsonSend struct {
	Source    string         `json:"source"`
	Mode      string         `json:"mode"`
	Signal    string         `json:"signal"`
	Sender    string         `json:"sender"`
	Responses []jsonResponse `json:"responses"`
	Error     string         `json:"error,omitempty"`
}

type jsonResponse struct {
	Receiver string `json:"receiver"`
	Value    any    `json:"value"`
	Error    string `json:"error,omitempty"`
}

// JSON writes result as one indented JSON document.
func JSON(w io.Writer, result *executor.Result, opts Options) error {
	doc := jsonReport{RunID: opts.RunID, Failed: result.Failed(), Sends: make([]jsonSend, 0, len(result.Sends))}
	for _, s := range result.Sends {
		js := jsonSend{
			Source:    s.Source,
			Mode:      s.Mode,
			Signal:    fmt.Sprint(s.Signal),
			Sender:    fmt.Sprint(s.Sender),
			Responses: make([]jsonResponse, 0, len(s.Responses)),
			Error:     errorString(s.Err),
		}
		for _, r := range s.Responses {
			js.Responses = append(js.Responses, jsonResponse{Receiver: r.Receiver, Value: r.Value, Error: errorString(r.Err)})
		}
		doc.Sends = append(doc.Sends, js)
	}
	if opts.Stats {
		doc.Stats = &result.Stats
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
