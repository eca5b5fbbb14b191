package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/a11yscan/internal/engine"
	"github.com/scan-io-git/a11yscan/internal/issues"
	"github.com/scan-io-git/a11yscan/internal/markup"
	"github.com/scan-io-git/a11yscan/internal/rules"
)

const base = "/work/project"

func sampleReport(t *testing.T) *Report {
	t.Helper()

	results := []engine.FileResult{
		{
			Path:     filepath.Join(base, "site", "index.html"),
			Kind:     markup.KindHypertext,
			Elements: 4,
			Issues: []issues.Issue{
				{
					RuleID:         "img-alt",
					Severity:       issues.SeverityError,
					Message:        "Image has no alt attribute",
					Line:           3,
					SourceLineText: `  <img src="a.png">`,
					Fix:            "Add an alt attribute",
				},
				{
					RuleID:         "heading-order",
					Severity:       issues.SeverityWarning,
					Message:        "Heading level skipped from h1 to h3",
					Line:           5,
					SourceLineText: "<h3>x</h3>",
					Fix:            "Use the next heading level",
				},
			},
		},
		{Path: filepath.Join(base, "App.tsx"), Kind: markup.KindTemplate, Elements: 2},
		{Path: filepath.Join(base, "empty.js"), Kind: markup.KindTemplate, Skipped: true, Reason: engine.ReasonNoMarkup},
	}

	reg, err := rules.Default(rules.Options{}).Select([]string{"img-alt", "heading-order"})
	require.NoError(t, err)
	return New(Metadata{Tool: "a11yscan", Version: "1.0.0", BaseDir: base}, results, reg.Rules())
}

func TestNewSplitsCheckedAndSkipped(t *testing.T) {
	r := sampleReport(t)

	assert.Equal(t, engine.Totals{Files: 3, Skipped: 1, Errors: 1, Warnings: 1}, r.Totals)
	assert.Len(t, r.Checked(), 2)
	require.Len(t, r.Skipped(), 1)
	assert.Equal(t, "empty.js", r.DisplayPath(r.Skipped()[0].Path))
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport(t), false))

	want := `site/index.html
  line 3     error    [img-alt] Image has no alt attribute
             <img src="a.png">
             fix: Add an alt attribute
  line 5     warning  [heading-order] Heading level skipped from h1 to h3
             <h3>x</h3>
             fix: Use the next heading level

Skipped files
  empty.js: no markup elements found

1 error, 1 warning in 2 files (1 skipped)
`
	assert.Equal(t, want, buf.String())
}

func TestWriteTextClean(t *testing.T) {
	r := New(Metadata{BaseDir: base}, []engine.FileResult{{Path: filepath.Join(base, "a.html"), Elements: 3}}, nil)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r, false))
	assert.Equal(t, "No accessibility issues found in 1 file\n", buf.String())
}

func TestWriteTextColored(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport(t), true))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport(t)))

	var out OutputJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "a11yscan", out.Tool)
	require.Len(t, out.Files, 2)
	assert.Equal(t, "site/index.html", out.Files[0].Path)
	assert.Equal(t, "hypertext", out.Files[0].Kind)
	assert.Len(t, out.Files[0].Issues, 2)
	assert.Equal(t, "App.tsx", out.Files[1].Path)
	assert.NotNil(t, out.Files[1].Issues)
	assert.Equal(t, []SkippedJSON{{Path: "empty.js", Reason: engine.ReasonNoMarkup}}, out.Skipped)
	assert.Equal(t, 1, out.Totals.Errors)

	assert.Contains(t, buf.String(), `"issues": []`)
}

func TestBuildSARIF(t *testing.T) {
	log, err := BuildSARIF(sampleReport(t))
	require.NoError(t, err)

	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	run := log.Runs[0]
	assert.Equal(t, "a11yscan", run.Tool.Driver.Name)
	require.NotNil(t, run.Tool.Driver.Version)
	assert.Equal(t, "1.0.0", *run.Tool.Driver.Version)

	require.Len(t, run.Tool.Driver.Rules, 2)
	assert.Equal(t, "img-alt", run.Tool.Driver.Rules[0].ID)
	assert.Equal(t, "error", run.Tool.Driver.Rules[0].DefaultConfiguration.Level)
	assert.Equal(t, "1.1.1", run.Tool.Driver.Rules[0].Properties["wcag"])
	assert.Equal(t, "file", run.Tool.Driver.Rules[1].Properties["kind"])

	require.Len(t, run.Results, 2)
	first := run.Results[0]
	assert.Equal(t, "img-alt", *first.RuleID)
	assert.Equal(t, "error", *first.Level)
	assert.Equal(t, "Image has no alt attribute", *first.Message.Text)
	loc := first.Locations[0].PhysicalLocation
	assert.Equal(t, "site/index.html", *loc.ArtifactLocation.URI)
	assert.Equal(t, 3, *loc.Region.StartLine)
	assert.Equal(t, `<img src="a.png">`, *loc.Region.Snippet.Text)
	assert.Len(t, first.PartialFingerprints[fingerprintName], 64)
	assert.Equal(t, "warning", *run.Results[1].Level)
}

func TestBuildSARIFVersionControl(t *testing.T) {
	rep := sampleReport(t)
	log, err := BuildSARIF(rep)
	require.NoError(t, err)
	assert.Empty(t, log.Runs[0].VersionControlProvenance)

	rep.Metadata.Repository = "https://example.com/web/site"
	rep.Metadata.Branch = "main"
	rep.Metadata.Revision = "0123abcd"
	log, err = BuildSARIF(rep)
	require.NoError(t, err)
	require.Len(t, log.Runs[0].VersionControlProvenance, 1)
	vcs := log.Runs[0].VersionControlProvenance[0]
	assert.Equal(t, "https://example.com/web/site", *vcs.RepositoryURI)
	assert.Equal(t, "main", *vcs.Branch)
	assert.Equal(t, "0123abcd", *vcs.RevisionID)
}

func TestFingerprintIgnoresLine(t *testing.T) {
	is := issues.Issue{RuleID: "img-alt", Message: "m", Line: 3, SourceLineText: "  <img>"}
	moved := is
	moved.Line = 40
	moved.SourceLineText = "<img>"

	assert.Equal(t, fingerprint("a.html", is), fingerprint("a.html", moved))
	assert.NotEqual(t, fingerprint("a.html", is), fingerprint("b.html", is))
}

func TestWriteSARIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, sampleReport(t)))
	assert.Contains(t, buf.String(), `"version": "2.1.0"`)
	assert.Contains(t, buf.String(), `"$schema"`)
	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))
}

func TestWriteHTML(t *testing.T) {
	r := sampleReport(t)
	r.Metadata.Time = time.Date(2024, time.March, 2, 15, 4, 5, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, r))
	out := buf.String()

	assert.Contains(t, out, "<title>Accessibility report</title>")
	assert.Contains(t, out, "generated on 2nd March 2024 3:04:05 pm")
	assert.Contains(t, out, "<h2>site/index.html</h2>")
	assert.Contains(t, out, "&lt;img src=&#34;a.png&#34;&gt;")
	assert.Contains(t, out, "<code>empty.js</code>: no markup elements found")
	assert.NotContains(t, out, "App.tsx")
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, "21st January 2024 12:00:00 am", formatDateTime(time.Date(2024, time.January, 21, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "13th May 2024 11:30:09 pm", formatDateTime(time.Date(2024, time.May, 13, 23, 30, 9, 0, time.UTC)))
}

func TestWriteIsDeterministic(t *testing.T) {
	for _, format := range []Format{FormatText, FormatJSON, FormatSARIF, FormatHTML} {
		var a, b bytes.Buffer
		require.NoError(t, Write(&a, format, sampleReport(t), false))
		require.NoError(t, Write(&b, format, sampleReport(t), false))
		assert.Equal(t, a.String(), b.String(), "format %s", format)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("sarif")
	require.NoError(t, err)
	assert.Equal(t, FormatSARIF, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorIs(t, Write(&bytes.Buffer{}, Format("xml"), sampleReport(t), false), ErrUnknownFormat)
}

func TestColorEnabled(t *testing.T) {
	assert.False(t, ColorEnabled(&bytes.Buffer{}))
}

func TestWriteRules(t *testing.T) {
	reg, err := rules.Default(rules.Options{}).Select([]string{"img-alt", "duplicate-id"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRules(&buf, reg.Rules(), false))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "img-alt")
	assert.Contains(t, lines[1], "element")
	assert.Contains(t, lines[2], "duplicate-id")
	assert.Contains(t, lines[2], "file")

	buf.Reset()
	require.NoError(t, WriteRules(&buf, reg.Rules(), true))
	var out []RuleJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "4.1.1", out[1].WCAG)
}
