package report

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"s3-utils/core/render"
	"s3-utils/feature/snapshot"
)

// row is the view model for one table line.
type row struct {
	Label  template.HTML
	Files  string
	DFiles string
	Bytes  string
	DBytes string
	Shaded bool
}

type view struct {
	Intro string
	Now   string
	Rows  []row
}

var reportTemplate = template.Must(template.New("report").Parse(`{{if .Intro}}<p>In the {{.Intro}} leading up to {{.Now}}:</p>{{end}}
<table>
<thead>
<tr style="background-color: #eee">
<th>Bucket</th>
<th colspan="2">Files</th>
<th colspan="2">Size</th>
</tr>
</thead>
<tbody>
{{range .Rows}}<tr{{if .Shaded}} style="background-color: #def"{{end}}>
<td style="padding-left: 0.5em; padding-right: 0.5em;">{{.Label}}</td>
<td style="padding-left: 0.5em; padding-right: 0.5em; font-family: monospace; text-align: right;">{{.Files}}</td>
<td style="padding-left: 0.5em; padding-right: 0.5em; font-family: monospace; text-align: right;">{{.DFiles}}</td>
<td style="padding-left: 0.5em; padding-right: 0.5em; font-family: monospace; text-align: right;">{{.Bytes}}</td>
<td style="padding-left: 0.5em; padding-right: 0.5em; font-family: monospace; text-align: right;">{{.DBytes}}</td>
</tr>
{{end}}</tbody>
</table>
`))

// HTML renders the report as a standalone HTML table, one row per bucket
// in name order plus a totals row.
func HTML(rep *snapshot.Report, units render.Units) (string, error) {
	v := view{Rows: buildRows(rep, units)}
	if rep.Elapsed > 0 {
		v.Intro = formatElapsed(rep.Elapsed)
		v.Now = rep.Now.Format(time.RFC3339)
	}

	var buf strings.Builder
	if err := reportTemplate.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// WriteText renders the report as a console table.
func WriteText(w io.Writer, rep *snapshot.Report, units render.Units) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	if rep.Elapsed > 0 {
		fmt.Fprintf(tw, "In the %s leading up to %s:\n\n", formatElapsed(rep.Elapsed), rep.Now.Format(time.RFC3339))
	}

	fmt.Fprintf(tw, "bucket\tfiles\t\tsize\t\n")
	for _, name := range sortedBuckets(rep) {
		delta := rep.Buckets[name]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			name,
			render.FormatCount(delta.Files),
			render.FormatCountDelta(delta.DFiles),
			render.FormatBytes(delta.Bytes, units),
			render.FormatBytesDelta(delta.DBytes, units),
		)
	}
	fmt.Fprintf(tw, "total\t%s\t%s\t%s\t%s\n",
		render.FormatCount(rep.TotalFiles),
		render.FormatCountDelta(rep.TotalDFiles),
		render.FormatBytes(rep.TotalBytes, units),
		render.FormatBytesDelta(rep.TotalDBytes, units),
	)

	return tw.Flush()
}

func buildRows(rep *snapshot.Report, units render.Units) []row {
	var rows []row
	for i, name := range sortedBuckets(rep) {
		delta := rep.Buckets[name]
		rows = append(rows, row{
			Label:  template.HTML(template.HTMLEscapeString(name)),
			Files:  render.FormatCount(delta.Files),
			DFiles: render.FormatCountDelta(delta.DFiles),
			Bytes:  render.FormatBytes(delta.Bytes, units),
			DBytes: render.FormatBytesDelta(delta.DBytes, units),
			Shaded: i%2 == 1,
		})
	}
	rows = append(rows, row{
		Label:  template.HTML("<b>Total</b>"),
		Files:  render.FormatCount(rep.TotalFiles),
		DFiles: render.FormatCountDelta(rep.TotalDFiles),
		Bytes:  render.FormatBytes(rep.TotalBytes, units),
		DBytes: render.FormatBytesDelta(rep.TotalDBytes, units),
		Shaded: len(rep.Buckets)%2 == 1,
	})
	return rows
}

func sortedBuckets(rep *snapshot.Report) []string {
	names := make([]string, 0, len(rep.Buckets))
	for name := range rep.Buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatElapsed(d time.Duration) string {
	return d.Round(time.Second).String()
}
