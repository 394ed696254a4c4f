package results

import (
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/contract-analyzer/internal/llm"
)

const notSpecified = "Not specified"

// RenderText formats a record as a header followed by the analysis sections.
func RenderText(r Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Contract Analysis: %s\n", r.FileName)
	fmt.Fprintf(&b, "Analyzed: %s\n", r.AnalyzedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Extraction: %s, %d page(s), %d chars extracted, %d chars analyzed\n", r.Method, r.Pages, r.CharsTotal, r.CharsSent)
	if r.RequestID != "" {
		fmt.Fprintf(&b, "Request: %s\n", r.RequestID)
	}
	b.WriteString(RenderAnalysis(r.Analysis))
	return b.String()
}

// RenderAnalysis formats the analysis sections; each starts with a "== Title ==" line.
func RenderAnalysis(a llm.ContractAnalysis) string {
	var b strings.Builder

	section(&b, "Summary")
	b.WriteString(orDefault(a.Summary, "No summary available"))
	b.WriteString("\n")

	section(&b, "Contract Details")
	fmt.Fprintf(&b, "Client: %s\n", orDefault(a.ClientName, notSpecified))
	fmt.Fprintf(&b, "Contract Type: %s\n", orDefault(a.ContractType, notSpecified))
	fmt.Fprintf(&b, "Start Date: %s\n", orDefault(a.StartDate, notSpecified))
	fmt.Fprintf(&b, "End Date: %s\n", orDefault(a.EndDate, notSpecified))

	section(&b, "Key Dates")
	if len(a.KeyDates) == 0 {
		b.WriteString("None identified\n")
	}
	for _, d := range a.KeyDates {
		fmt.Fprintf(&b, "- %s: %s\n", d.Label, d.Date)
	}

	section(&b, "Products & Services")
	if len(a.ProductsServices) == 0 {
		b.WriteString("None identified\n")
	}
	for _, p := range a.ProductsServices {
		b.WriteString("- " + p.Name)
		if qty := strings.TrimSpace(p.Quantity + " " + p.Unit); qty != "" {
			b.WriteString(" | " + qty)
		}
		if p.Rate != "" {
			b.WriteString(" | " + p.Rate)
		}
		b.WriteString("\n")
		if p.Description != "" {
			b.WriteString("  " + p.Description + "\n")
		}
	}

	section(&b, "Key Clauses")
	if len(a.KeyClauses) == 0 {
		b.WriteString("None identified\n")
	}
	for i, c := range a.KeyClauses {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, c.Type, c.Description)
		writeQuote(&b, c.Quote)
	}

	section(&b, "Risk Areas")
	if len(a.RiskAreas) == 0 {
		b.WriteString("None identified\n")
	}
	for i, r := range a.RiskAreas {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Concern)
		writeQuote(&b, r.Quote)
	}
	return b.String()
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n== ")
	b.WriteString(title)
	b.WriteString(" ==\n")
}

func writeQuote(b *strings.Builder, q string) {
	if q = strings.TrimSpace(q); q != "" {
		fmt.Fprintf(b, "   Quote: %q\n", q)
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
