// Package output renders CLI results as colored text, aligned tables or JSON.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format is an output format name
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatText  Format = "text"
)

// ParseFormat maps a flag value to a Format, defaulting to text
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON
	case FormatTable:
		return FormatTable
	}
	return FormatText
}

// Printer writes results in one format
type Printer struct {
	w      io.Writer
	format Format
}

func New(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// JSON reports whether machine-readable output was requested
func (p *Printer) JSON() bool { return p.format == FormatJSON }

// Object prints v as indented JSON in json mode and as key/value lines
// otherwise. fields are the text-mode pairs in display order.
func (p *Printer) Object(v interface{}, fields [][2]string) error {
	if p.JSON() {
		return p.writeJSON(v)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(tw, "%s\t%s\n", color.New(color.Bold).Sprint(f[0]+":"), f[1])
	}
	return tw.Flush()
}

// Table prints rows under headers; json mode prints v instead
func (p *Printer) Table(v interface{}, headers []string, rows [][]string) error {
	if p.JSON() {
		return p.writeJSON(v)
	}
	if len(rows) == 0 {
		p.Info("No results.")
		return nil
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, color.New(color.Bold).Sprint(strings.Join(headers, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Success prints a green confirmation line; silent in json mode
func (p *Printer) Success(msg string, args ...interface{}) {
	if !p.JSON() {
		color.New(color.FgGreen).Fprintf(p.w, "✓ "+msg+"\n", args...)
	}
}

// Info prints a cyan line; silent in json mode
func (p *Printer) Info(msg string, args ...interface{}) {
	if !p.JSON() {
		color.New(color.FgCyan).Fprintf(p.w, msg+"\n", args...)
	}
}

// Warning prints a yellow line; silent in json mode
func (p *Printer) Warning(msg string, args ...interface{}) {
	if !p.JSON() {
		color.New(color.FgYellow).Fprintf(p.w, "Warning: "+msg+"\n", args...)
	}
}

func (p *Printer) writeJSON(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
