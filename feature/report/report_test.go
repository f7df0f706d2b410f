package report_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"s3-utils/core/render"
	"s3-utils/feature/report"
	"s3-utils/feature/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *snapshot.Report {
	return &snapshot.Report{
		Buckets: map[string]snapshot.BucketDelta{
			"alpha": {Files: 10, Bytes: 1 << 20, DFiles: 2, DBytes: 1 << 10},
			"beta":  {Files: 5, Bytes: 512, DFiles: -1, DBytes: -128},
		},
		Now:         time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
		Elapsed:     24 * time.Hour,
		TotalFiles:  15,
		TotalBytes:  (1 << 20) + 512,
		TotalDFiles: 1,
		TotalDBytes: (1 << 10) - 128,
	}
}

func TestHTML(t *testing.T) {
	html, err := report.HTML(sampleReport(), render.UnitsBinary)
	require.NoError(t, err)

	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "alpha")
	assert.Contains(t, html, "beta")
	assert.Contains(t, html, "<b>Total</b>")
	assert.Contains(t, html, "+2")
	assert.Contains(t, html, "-1")
	assert.Contains(t, html, "1.0 MiB")
	assert.Contains(t, html, "leading up to 2026-08-31T12:00:00Z")

	// Buckets render in name order.
	assert.Less(t, strings.Index(html, "alpha"), strings.Index(html, "beta"))
}

func TestHTML_EscapesBucketNames(t *testing.T) {
	rep := &snapshot.Report{
		Buckets: map[string]snapshot.BucketDelta{
			"<script>": {Files: 1, Bytes: 1},
		},
	}

	html, err := report.HTML(rep, render.UnitsBinary)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestHTML_NoPrevious(t *testing.T) {
	rep := sampleReport()
	rep.Elapsed = 0

	html, err := report.HTML(rep, render.UnitsBinary)
	require.NoError(t, err)
	assert.NotContains(t, html, "leading up to")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf, sampleReport(), render.UnitsBinary))

	out := buf.String()
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "total")
	assert.Contains(t, out, "+2")
	assert.Contains(t, out, "1.0 MiB")
}

func TestSubject(t *testing.T) {
	mailer := report.NewMailer(report.Config{Subject: "S3 storage report"})
	subject := mailer.Subject(sampleReport())
	assert.Equal(t, "S3 storage report (+1 files, +896 B)", subject)
}

func TestSend_RequiresConfig(t *testing.T) {
	mailer := report.NewMailer(report.Config{})
	err := mailer.Send(sampleReport(), "<table></table>")
	assert.Error(t, err)
}
