package report

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"server/internal/catalog"
	"server/internal/format"
	"server/internal/logger"
	"server/internal/models"
)

const (
	pageMargin = 12.0
	sectionGap = 6.0
	rowHeight  = 7.0
	labelWidth = 95.0
)

// Options carries the optional report sections.
type Options struct {
	PlanYear    *int
	AIReview    string
	Signature   string
	GeneratedAt time.Time
}

// Section records where a table landed on the page, used to verify the
// stacking layout.
type Section struct {
	Title  string
	Page   int
	StartY float64
	EndY   float64
}

// Document is the serialized report. Bytes is produced by a single
// render pass and feeds both the download response and the artifact
// store.
type Document struct {
	Bytes    []byte
	FileName string
	Sections []Section
}

type theme struct {
	r, g, b       int
	headTextWhite bool
}

var (
	themeMetrics      = theme{41, 128, 185, true}
	themeBreakdown    = theme{52, 73, 94, true}
	themeExcluded     = theme{108, 117, 125, true}
	themeAIReview     = theme{102, 51, 153, true}
	themeCorrective   = theme{192, 57, 43, true}
	themeConsequences = theme{241, 196, 15, false}
)

type builder struct {
	pdf      *gofpdf.Fpdf
	sections []Section
	log      logger.Logger
}

// Build renders the full report for one test result. It fails fast when
// the result is absent and performs no partial writes.
func Build(def catalog.TestDefinition, result models.TestResult, opts Options) (*Document, error) {
	log := logger.New("report").Function("Build")

	if result == nil {
		return nil, log.ErrMsg("no test result to render")
	}

	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	b := &builder{pdf: pdf, log: log}

	b.writeHeader(def, opts, generatedAt)
	b.writeCriterion(def)

	b.addTable("Metrics", themeMetrics, []string{"Metric", "Value"}, metricRows(def, result))

	if breakdown, ok := result.Nested(models.ResultKeyBreakdown); ok {
		b.addTable("Breakdown", themeBreakdown, []string{"Component", "Amount"}, nestedRows(breakdown, format.KindCurrency))
	}

	if excluded, ok := result.Nested(models.ResultKeyExcluded); ok {
		b.addTable("Excluded Participants", themeExcluded, []string{"Reason", "Count"}, nestedRows(excluded, format.KindCount))
	}

	// An AI narrative replaces the static advisory copy entirely.
	if opts.AIReview != "" {
		b.addParagraphTable("AI Compliance Review", themeAIReview, opts.AIReview)
	} else if result.Failed() {
		b.addBulletTable("Corrective Actions", themeCorrective, def.CorrectiveActions)
		b.addBulletTable("Consequences", themeConsequences, def.Consequences)
	}

	if opts.Signature != "" {
		b.writeSignature(opts.Signature, generatedAt)
	}

	b.writeFooter()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, log.Err("failed to serialize report", err, "test", def.Key)
	}

	return &Document{
		Bytes:    buf.Bytes(),
		FileName: fileName(def, opts.PlanYear),
		Sections: b.sections,
	}, nil
}

func (b *builder) writeHeader(def catalog.TestDefinition, opts Options, generatedAt time.Time) {
	b.pdf.SetFont("Helvetica", "B", 16)
	b.pdf.CellFormat(0, 10, def.Name, "", 1, "C", false, 0, "")

	b.pdf.SetFont("Helvetica", "", 10)
	if opts.PlanYear != nil {
		b.pdf.CellFormat(0, 6, fmt.Sprintf("Plan Year: %d", *opts.PlanYear), "", 1, "C", false, 0, "")
	}
	b.pdf.CellFormat(0, 6,
		"Generated on "+generatedAt.Format("January 2, 2006 at 3:04 PM"),
		"", 1, "C", false, 0, "")
	b.pdf.Ln(2)
}

func (b *builder) writeCriterion(def catalog.TestDefinition) {
	b.pdf.SetFont("Helvetica", "I", 9)
	b.pdf.SetTextColor(80, 80, 80)
	b.pdf.MultiCell(0, 4.5, "Test Criterion: "+def.Criterion, "", "L", false)
	b.pdf.SetTextColor(0, 0, 0)
}

// addTable emits a titled two-column table at the running cursor and
// records its vertical extent.
func (b *builder) addTable(title string, th theme, head []string, rows [][]string) {
	startPage, startY := b.beginSection()

	b.writeTableTitle(title, th)

	b.pdf.SetFont("Helvetica", "B", 9)
	b.setHeadColors(th)
	valueWidth := b.contentWidth() - labelWidth
	b.pdf.CellFormat(labelWidth, rowHeight, head[0], "1", 0, "L", true, 0, "")
	b.pdf.CellFormat(valueWidth, rowHeight, head[1], "1", 1, "L", true, 0, "")
	b.pdf.SetTextColor(0, 0, 0)

	b.pdf.SetFont("Helvetica", "", 9)
	fill := false
	for _, row := range rows {
		if fill {
			b.pdf.SetFillColor(245, 245, 245)
		} else {
			b.pdf.SetFillColor(255, 255, 255)
		}
		b.pdf.CellFormat(labelWidth, rowHeight, row[0], "1", 0, "L", true, 0, "")
		b.pdf.CellFormat(valueWidth, rowHeight, row[1], "1", 1, "L", true, 0, "")
		fill = !fill
	}

	b.endSection(title, startPage, startY)
}

// addBulletTable emits a single-column table of advisory copy.
func (b *builder) addBulletTable(title string, th theme, lines []string) {
	startPage, startY := b.beginSection()

	b.writeTableTitle(title, th)

	b.pdf.SetFont("Helvetica", "", 9)
	for _, line := range lines {
		b.pdf.MultiCell(b.contentWidth(), 5.5, "• "+line, "1", "L", false)
	}

	b.endSection(title, startPage, startY)
}

// addParagraphTable emits one wrapped cell of narrative text.
func (b *builder) addParagraphTable(title string, th theme, text string) {
	startPage, startY := b.beginSection()

	b.writeTableTitle(title, th)

	b.pdf.SetFont("Helvetica", "", 9)
	b.pdf.MultiCell(b.contentWidth(), 5, text, "1", "L", false)

	b.endSection(title, startPage, startY)
}

func (b *builder) writeTableTitle(title string, th theme) {
	b.pdf.SetFont("Helvetica", "B", 11)
	b.setHeadColors(th)
	b.pdf.CellFormat(b.contentWidth(), 8, title, "1", 1, "L", true, 0, "")
	b.pdf.SetTextColor(0, 0, 0)
}

func (b *builder) setHeadColors(th theme) {
	b.pdf.SetFillColor(th.r, th.g, th.b)
	if th.headTextWhite {
		b.pdf.SetTextColor(255, 255, 255)
	} else {
		b.pdf.SetTextColor(40, 40, 40)
	}
}

// beginSection advances the cursor by the fixed stacking margin so each
// table starts strictly below the previous one.
func (b *builder) beginSection() (int, float64) {
	if len(b.sections) > 0 || b.pdf.GetY() > pageMargin {
		b.pdf.Ln(sectionGap)
	}
	return b.pdf.PageNo(), b.pdf.GetY()
}

func (b *builder) endSection(title string, startPage int, startY float64) {
	b.sections = append(b.sections, Section{
		Title:  title,
		Page:   startPage,
		StartY: startY,
		EndY:   b.pdf.GetY(),
	})
}

func (b *builder) writeSignature(signature string, signedAt time.Time) {
	_, height := b.pdf.GetPageSize()
	if b.pdf.GetY() > height-50 {
		b.pdf.AddPage()
	}
	b.pdf.SetY(height - 45)

	b.pdf.SetFont("Helvetica", "I", 10)
	b.pdf.CellFormat(0, 6, "Digitally signed by: "+signature, "", 1, "L", false, 0, "")
	b.pdf.SetFont("Helvetica", "", 8)
	b.pdf.CellFormat(0, 5, "Signed on "+signedAt.Format(time.RFC1123), "", 1, "L", false, 0, "")
}

func (b *builder) writeFooter() {
	_, height := b.pdf.GetPageSize()
	b.pdf.SetY(height - 18)
	b.pdf.SetFont("Helvetica", "", 7)
	b.pdf.SetTextColor(120, 120, 120)
	b.pdf.CellFormat(0, 5,
		"This report is generated for nondiscrimination compliance review and does not constitute legal or tax advice.",
		"", 1, "C", false, 0, "")
	b.pdf.SetTextColor(0, 0, 0)
}

func (b *builder) contentWidth() float64 {
	width, _ := b.pdf.GetPageSize()
	return width - 2*pageMargin
}

func metricRows(def catalog.TestDefinition, result models.TestResult) [][]string {
	rows := make([][]string, 0, len(def.Fields))
	for _, field := range def.Fields {
		rows = append(rows, []string{
			field.DisplayLabel(),
			format.Apply(field.Kind, result[field.Key]),
		})
	}
	return rows
}

func nestedRows(nested map[string]any, kind format.Kind) [][]string {
	keys := make([]string, 0, len(nested))
	for key := range nested {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, format.Apply(kind, nested[key])})
	}
	return rows
}

func fileName(def catalog.TestDefinition, planYear *int) string {
	name := def.Key
	if planYear != nil {
		name += "_" + strconv.Itoa(*planYear)
	}
	return name + "_report.pdf"
}
