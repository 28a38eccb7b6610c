// Package pdf renders the generated health report as a paginated A4
// document and writes it to the export directory.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/healthtrack/symptom-agent/internal/domain"
)

// Layout constants, in millimeters.
const (
	margin     = 20.0
	lineHeight = 5.0
)

type Exporter struct {
	dir string
	now func() time.Time
}

func NewExporter(dir string) *Exporter {
	return &Exporter{
		dir: dir,
		now: time.Now,
	}
}

// Export lays out the report in a single pass: title, condition,
// generation date, optional profile line, section heading, then the
// body wrapped to the text width with a page break whenever the next
// line would cross the bottom margin. Returns the generated filename.
func (e *Exporter) Export(ctx context.Context, session domain.ChatSession, report string) (string, error) {
	doc, filename := e.render(session, report)
	if err := doc.Error(); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	if err := doc.OutputFileAndClose(filepath.Join(e.dir, filename)); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return filename, nil
}

func (e *Exporter) render(session domain.ChatSession, report string) (*fpdf.Fpdf, string) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	pageWidth, pageHeight := doc.GetPageSize()
	tr := doc.UnicodeTranslatorFromDescriptor("")
	y := margin

	condition := session.Condition
	if condition == "" {
		condition = "General Health"
	}

	doc.SetFont("Helvetica", "B", 20)
	doc.Text(margin, y, "Health Symptom Report")
	y += 15

	doc.SetFont("Helvetica", "", 12)
	doc.Text(margin, y, tr("Condition: "+condition))
	y += 8
	doc.Text(margin, y, "Generated: "+e.now().Format("January 2, 2006"))
	y += 8

	if p := session.UserProfile; p != nil && (p.Age > 0 || p.Gender != "") {
		doc.Text(margin, y, tr(fmt.Sprintf("Profile: Age %s, Gender: %s", orNA(ageString(p.Age)), orNA(string(p.Gender)))))
		y += 15
	} else {
		y += 8
	}

	doc.SetFont("Helvetica", "B", 14)
	doc.Text(margin, y, "AI Generated Summary")
	y += 10

	doc.SetFont("Helvetica", "", 10)
	for _, line := range doc.SplitText(tr(report), pageWidth-2*margin) {
		if y > pageHeight-margin {
			doc.AddPage()
			y = margin
		}
		doc.Text(margin, y, line)
		y += lineHeight
	}

	filename := fmt.Sprintf("symptom-report-%s-%s.pdf",
		e.now().Format("2006-01-02"), sanitize(condition))
	return doc, filename
}

func ageString(age int) string {
	if age <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", age)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// sanitize makes the condition label safe for a filename.
func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "general"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ' || r == '_':
			return '-'
		default:
			return -1
		}
	}, s)
}
