// Package output renders machine records for the terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yairfalse/machine/pkg/machine"
)

// Format selects how records are written.
type Format string

const (
	FormatPlain Format = "plain"
	FormatQuiet Format = "quiet"
	FormatJSON  Format = "json"
)

var formats = []Format{FormatPlain, FormatQuiet, FormatJSON}

// ParseFormat validates s. An empty string selects FormatPlain.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatPlain, nil
	}
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}

	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, string(f))
	}
	return "", fmt.Errorf("invalid output format: %s (must be one of: %s)", s, strings.Join(names, ", "))
}

// jsonRecord is the JSON shape of a record.
type jsonRecord struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Tags   []string `json:"tags"`
	Region string   `json:"region"`
	IP     string   `json:"ip"`
	Type   string   `json:"type"`
}

// Write renders records to w in format f.
func Write(w io.Writer, f Format, records []machine.Record) error {
	switch f {
	case FormatQuiet:
		return writeQuiet(w, records)
	case FormatJSON:
		return writeJSON(w, records)
	default:
		return writePlain(w, records)
	}
}

func writePlain(w io.Writer, records []machine.Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%s (%d, %s): %s\n", r.Name, r.ID, r.Region, r.IPAddress); err != nil {
			return err
		}
	}
	return nil
}

func writeQuiet(w io.Writer, records []machine.Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintln(w, r.ID); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, records []machine.Record) error {
	out := make([]jsonRecord, 0, len(records))
	for _, r := range records {
		tags := []string(r.Tags)
		if tags == nil {
			tags = []string{}
		}
		out = append(out, jsonRecord{
			ID:     r.ID,
			Name:   r.Name,
			Tags:   tags,
			Region: r.Region,
			IP:     r.IPAddress,
			Type:   r.Type(),
		})
	}
	return json.NewEncoder(w).Encode(out)
}
