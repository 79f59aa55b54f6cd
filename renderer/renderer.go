// Package renderer formats crowdfunding views as markdown.
//
// Each view is a plain struct built from the domain types and rendered with
// a text/template assembled from the files embedded under templates/.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// RenderProjectList renders a list of projects to a markdown string.
func RenderProjectList(l *ProjectList) string {
	partials := map[string]string{
		"project_table": "project_table.md",
	}
	return renderTemplate("projects", "projects.md", partials, l)
}

// RenderProjectDetail renders one project, its reward tiers and its pledge counts.
func RenderProjectDetail(d *ProjectDetail) string {
	partials := map[string]string{
		"project_title":   "project_title.md",
		"project_rewards": "project_rewards.md",
		"pledge_counts":   "pledge_counts.md",
	}
	return renderTemplate("project", "project.md", partials, d)
}

// RenderPledgeList renders ledger records to a markdown string.
func RenderPledgeList(l *PledgeList) string {
	return renderTemplate("pledges", "pledges.md", nil, l)
}

// RenderAdmission renders the outcome of a pledge.
func RenderAdmission(a *Admission) string {
	return renderTemplate("admission", "admission.md", nil, a)
}

// RenderStats renders the system statistics.
func RenderStats(s *Stats) string {
	partials := map[string]string{
		"pledge_counts": "pledge_counts.md",
	}
	return renderTemplate("stats", "stats.md", partials, s)
}

// RenderBackerSummary renders the statistics of a backer.
func RenderBackerSummary(b *BackerSummary) string {
	partials := map[string]string{
		"pledge_counts": "pledge_counts.md",
	}
	return renderTemplate("backer", "backer.md", partials, b)
}

// RenderRanking renders the top funded projects.
func RenderRanking(r *Ranking) string {
	partials := map[string]string{
		"project_table": "project_table.md",
	}
	return renderTemplate("top", "top.md", partials, r)
}

// RenderAudit renders the discrepancies found by an audit.
func RenderAudit(a *AuditReport) string {
	return renderTemplate("audit", "audit.md", nil, a)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, "templates/"+file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
