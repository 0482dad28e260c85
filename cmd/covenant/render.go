package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/covenant/internal/agents"
	"github.com/JaimeStill/covenant/internal/analyses"
	"github.com/JaimeStill/covenant/internal/clauses"
	"github.com/JaimeStill/covenant/internal/report"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(f string) error {
	switch f {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q", f)
}

// analysisView is the exported shape of a local run.
type analysisView struct {
	File           string             `json:"file"`
	PageCount      int                `json:"page_count"`
	Transcribed    []int              `json:"transcribed_pages,omitempty"`
	MissingClauses []clauses.Category `json:"missing_clauses"`
	Report         report.FinalReport `json:"report"`
}

type styles struct {
	title   lipgloss.Style
	heading lipgloss.Style
	muted   lipgloss.Style
	alert   lipgloss.Style
	sev     map[report.Severity]lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		heading: lipgloss.NewStyle().Bold(true).Underline(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		alert:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		sev: map[report.Severity]lipgloss.Style{
			report.SeverityHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			report.SeverityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
			report.SeverityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		},
	}
}

// renderer writes reports as text, JSON, or YAML. Text output is styled
// only when w is a terminal.
type renderer struct {
	w      io.Writer
	styled bool
	st     styles
}

func newRenderer(w io.Writer) *renderer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &renderer{w: w, styled: styled, st: newStyles()}
}

func (r *renderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

func (r *renderer) Outcome(format, file string, out analyses.Outcome) error {
	view := analysisView{
		File:           file,
		PageCount:      out.Document.PageCount,
		Transcribed:    out.Document.Transcribed,
		MissingClauses: out.Clauses.Missing,
		Report:         out.Report,
	}

	switch format {
	case formatJSON:
		return r.json(view)
	case formatYAML:
		return r.yaml(view)
	}

	r.text(view)
	return nil
}

func (r *renderer) Clauses(format string, res clauses.Result) error {
	switch format {
	case formatJSON:
		return r.json(res)
	case formatYAML:
		return r.yaml(res)
	}

	for _, cat := range clauses.Categories {
		fmt.Fprintln(r.w, r.style(r.st.heading, string(cat)))
		if window, ok := res.Clauses[cat]; ok {
			fmt.Fprintf(r.w, "  %s\n\n", window)
		} else {
			fmt.Fprintf(r.w, "  %s\n\n", r.style(r.st.muted, "not found"))
		}
	}
	return nil
}

func (r *renderer) text(v analysisView) {
	rep := v.Report
	c := rep.ContractClassification

	fmt.Fprintln(r.w, r.style(r.st.title, "Contract analysis: "+v.File))
	fmt.Fprintf(r.w, "Type:       %s (confidence %.2f)\n", c.ContractType, c.Confidence)
	fmt.Fprintf(r.w, "Risk score: %.2f\n", rep.RiskScore)

	threshold := fmt.Sprintf("Threshold:  %.2f (%s)", rep.RiskThreshold, rep.RiskLevel)
	if rep.ExceedsThreshold {
		threshold += " " + r.style(r.st.alert, "EXCEEDED")
	}
	fmt.Fprintln(r.w, threshold)

	if rep.Summary != "" {
		fmt.Fprintf(r.w, "\n%s\n", rep.Summary)
	}

	if len(v.MissingClauses) > 0 {
		names := make([]string, len(v.MissingClauses))
		for i, m := range v.MissingClauses {
			names[i] = string(m)
		}
		fmt.Fprintln(r.w, r.style(r.st.muted, "Missing clauses: "+strings.Join(names, ", ")))
	}

	for _, domain := range slices.Sorted(maps.Keys(rep.Domains)) {
		fmt.Fprintf(r.w, "\n%s\n", r.style(r.st.heading, domainTitle(domain)))
		for _, f := range rep.Domains[domain] {
			sev := r.style(r.st.sev[f.Severity], fmt.Sprintf("%-6s", f.Severity))
			fmt.Fprintf(r.w, "  %s %s %s\n", sev, f.Issue, r.style(r.st.muted, fmt.Sprintf("(%.2f)", f.Confidence)))
		}
	}

	for _, domain := range slices.Sorted(maps.Keys(rep.Analysis)) {
		if res := rep.Analysis[domain]; res.Error != "" {
			fmt.Fprintf(r.w, "\n%s %s\n", r.style(r.st.alert, domainTitle(domain)+":"), res.Error)
		}
	}
}

func (r *renderer) json(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// yaml re-encodes v through its JSON form so keys match the JSON output.
func (r *renderer) yaml(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}

	enc := yaml.NewEncoder(r.w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func domainTitle(domain string) string {
	if d, ok := agents.Lookup(domain); ok {
		return d.Display
	}
	return domain
}
