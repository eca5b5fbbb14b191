package report

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/a11yscan/internal/issues"
	"github.com/scan-io-git/a11yscan/internal/rules"
)

const (
	informationURI  = "https://github.com/scan-io-git/a11yscan"
	fingerprintName = "a11yscan/v1"
)

// BuildSARIF converts a report into a SARIF 2.1.0 log with a single run.
func BuildSARIF(r *Report) (*sarif.Report, error) {
	log, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, err
	}

	tool := r.Metadata.Tool
	if tool == "" {
		tool = "a11yscan"
	}
	run := sarif.NewRunWithInformationURI(tool, informationURI)
	if r.Metadata.Version != "" {
		run.Tool.Driver.WithVersion(r.Metadata.Version)
	}

	if r.Metadata.Repository != "" {
		vcs := sarif.NewVersionControlDetails().WithRepositoryURI(r.Metadata.Repository)
		if r.Metadata.Revision != "" {
			vcs.WithRevisionID(r.Metadata.Revision)
		}
		if r.Metadata.Branch != "" {
			vcs.WithBranch(r.Metadata.Branch)
		}
		run.AddVersionControlProvenance(vcs)
	}

	for _, rule := range r.Rules {
		addRule(run, rule)
	}

	for _, res := range r.Checked() {
		uri := filepath.ToSlash(r.DisplayPath(res.Path))
		for _, is := range res.Issues {
			run.AddResult(buildResult(uri, is))
		}
	}

	log.AddRun(run)
	return log, nil
}

// WriteSARIF renders the report as indented SARIF JSON.
func WriteSARIF(w io.Writer, r *Report) error {
	log, err := BuildSARIF(r)
	if err != nil {
		return err
	}
	if err := log.PrettyWrite(w); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func addRule(run *sarif.Run, rule rules.Rule) {
	run.AddRule(rule.ID).
		WithShortDescription(sarif.NewMultiformatMessageString(rule.Description)).
		WithTextHelp(rule.Fix).
		WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(level(rule.Severity))).
		WithProperties(sarif.Properties{
			"kind": rule.Kind().String(),
			"wcag": rule.WCAG,
			"tags": []string{"accessibility", "wcag" + rule.WCAG},
		})
}

func buildResult(uri string, is issues.Issue) *sarif.Result {
	region := sarif.NewRegion().WithStartLine(is.Line)
	if src := strings.TrimSpace(is.SourceLineText); src != "" {
		region.WithSnippet(sarif.NewArtifactContent().WithText(src))
	}

	result := sarif.NewRuleResult(is.RuleID).
		WithLevel(level(is.Severity)).
		WithMessage(sarif.NewTextMessage(is.Message)).
		WithLocations([]*sarif.Location{
			sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(uri)).
					WithRegion(region),
			),
		})
	result.WithPartialFingerPrints(map[string]interface{}{fingerprintName: fingerprint(uri, is)})
	return result
}

func level(s issues.Severity) string {
	if s == issues.SeverityError {
		return "error"
	}
	return "warning"
}

// fingerprint identifies an issue independently of its line number so that moved code keeps its identity.
func fingerprint(uri string, is issues.Issue) string {
	hash := sha256.New()
	io.WriteString(hash, is.RuleID+"|"+uri+"|"+strings.TrimSpace(is.SourceLineText)+"|"+is.Message)
	return hex.EncodeToString(hash.Sum(nil))
}
