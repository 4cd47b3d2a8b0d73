// Package tableprinter writes tabular data, such as the list of offered steps, to a given destination.
package tableprinter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

const (
	tabwriterMinWidth = 6
	tabwriterWidth    = 4
	tabwriterPadding  = 3
	tabwriterPadChar  = ' '
	tabwriterFlags    = tabwriter.FilterHTML
)

// PrintTwoColumnTable writes a two column table with headers to a given
// output destination.
func PrintTwoColumnTable(output io.Writer, headers []string, rows [][]string) {
	w := tabwriter.NewWriter(output, tabwriterMinWidth, tabwriterWidth, tabwriterPadding, tabwriterPadChar, tabwriterFlags)

	for _, col := range headers {
		_, _ = fmt.Fprint(w, strings.ToUpper(col), "\t")
	}
	_, _ = fmt.Fprintln(w)

	for _, row := range rows {
		_, _ = fmt.Fprintln(w, row[0], "\t", row[1])
	}

	_ = w.Flush()
}

// PrintSteps writes the given step names with their descriptions, sorted by name. Steps without a description are
// listed with a dash.
func PrintSteps(output io.Writer, names []string, descriptions map[string]string) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	rows := make([][]string, 0, len(sorted))
	for _, name := range sorted {
		description, ok := descriptions[name]
		if !ok || description == "" {
			description = "-"
		}
		rows = append(rows, []string{name, description})
	}
	PrintTwoColumnTable(output, []string{"step", "description"}, rows)
}
