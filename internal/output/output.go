// Package output renders list reports for the terminal or for machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/InfernoTsugikuni/FlameUp/internal/backup"
	"github.com/InfernoTsugikuni/FlameUp/internal/snapshot"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (table|json|yaml)", s)
	}
}

type Formatter interface {
	Report(w io.Writer, rep backup.Report) error
}

func New(f Format) Formatter {
	switch f {
	case FormatJSON:
		return JSONFormatter{}
	case FormatYAML:
		return YAMLFormatter{}
	default:
		return TableFormatter{}
	}
}

// TableFormatter prints a human-readable listing.
type TableFormatter struct{}

func (TableFormatter) Report(w io.Writer, rep backup.Report) error {
	if !rep.Exists {
		_, err := fmt.Fprintf(w, "No backup directory found at: %s\n", rep.Root)
		return err
	}
	if len(rep.Snapshots) == 0 {
		_, err := fmt.Fprintf(w, "No backups found in: %s\n", rep.Root)
		return err
	}

	fmt.Fprintf(w, "Backups in %s:\n\n", rep.Root)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCREATED\tSIZE")
	var total int64
	for _, s := range rep.Snapshots {
		created := "-"
		if !s.Timestamp.IsZero() {
			created = s.Timestamp.Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, created, humanize.IBytes(uint64(s.Size)))
		total += s.Size
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal backups: %d (%s)\n", len(rep.Snapshots), humanize.IBytes(uint64(total)))
	return err
}

type JSONFormatter struct{}

func (JSONFormatter) Report(w io.Writer, rep backup.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(normalize(rep))
}

type YAMLFormatter struct{}

func (YAMLFormatter) Report(w io.Writer, rep backup.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(normalize(rep)); err != nil {
		return err
	}
	return enc.Close()
}

// normalize keeps machine output stable: an empty list, never null.
func normalize(rep backup.Report) backup.Report {
	if rep.Snapshots == nil {
		rep.Snapshots = []snapshot.Snapshot{}
	}
	return rep
}
