package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joseph-ayodele/contract-analyzer/internal/ocr"
	"github.com/joseph-ayodele/contract-analyzer/internal/results"
	"github.com/joseph-ayodele/contract-analyzer/internal/truncate"
)

// presenter prints batch outcomes to the terminal.
type presenter struct {
	w io.Writer

	title   lipgloss.Style
	ok      lipgloss.Style
	failed  lipgloss.Style
	muted   lipgloss.Style
	section lipgloss.Style
}

func newPresenter(w io.Writer) *presenter {
	return &presenter{
		w:       w,
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")),
		failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		section: lipgloss.NewStyle().Bold(true).Underline(true),
	}
}

func (p *presenter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func (p *presenter) Batch(rep results.BatchReport) {
	for _, o := range rep.Outcomes {
		p.Outcome(o)
	}
	summary := fmt.Sprintf("%d processed, %d failed", rep.Processed, rep.Failed)
	if rep.Failed == 0 {
		summary = p.ok.Render(summary)
	} else {
		summary = p.failed.Render(summary)
	}
	p.printf("\n%s\n", summary)
	if rep.File != "" {
		p.printf("%s\n", p.muted.Render("batch report: "+rep.File))
	}
}

func (p *presenter) Outcome(o results.Outcome) {
	p.printf("\n%s\n", p.title.Render(o.FileName))
	if o.Error != "" {
		p.printf("%s\n", p.failed.Render("failed: "+o.Error))
		return
	}
	meta := fmt.Sprintf("%s, %d page(s), %d of %d characters analyzed", o.Method, o.Pages, o.CharsSent, o.CharsTotal)
	p.printf("%s\n", p.muted.Render(meta))
	for _, w := range o.Warnings {
		p.printf("%s\n", p.muted.Render("warning: "+w))
	}
	if o.Analysis != nil {
		for _, line := range strings.Split(results.RenderAnalysis(*o.Analysis), "\n") {
			if strings.HasPrefix(line, "== ") {
				line = p.section.Render(strings.Trim(line, "= "))
			}
			p.printf("%s\n", line)
		}
	}
	if o.ResultFile != "" {
		p.printf("%s\n", p.ok.Render("saved "+o.ResultFile))
	}
}

func (p *presenter) Info(name string, pages int, ext ocr.ExtractedText, li truncate.LengthInfo) {
	p.printf("%s\n", p.title.Render(name))
	p.printf("pages:        %d\n", pages)
	p.printf("method:       %s\n", ext.Method)
	p.printf("ocr used:     %t\n", ext.OCRUsed)
	p.printf("characters:   %d\n", li.Length)
	p.printf("short text:   %t\n", li.IsShort)
	p.printf("recommended:  %d\n", li.Recommended)
	for _, w := range ext.Warnings {
		p.printf("%s\n", p.muted.Render("warning: "+w))
	}
}
