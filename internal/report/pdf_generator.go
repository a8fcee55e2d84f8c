package report

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/user/isoplot_go/internal/analysis"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// BookletInfo describes the conversion run printed on the cover page.
type BookletInfo struct {
	HeaderPath string
	CurvePath  string
}

// BookletPage is one block of the booklet: the analyzed block and its chart
// encoded as PNG. A nil Image prints a placeholder line instead.
type BookletPage struct {
	Block *analysis.BlockResult
	Image []byte
}

// pdfStyler holds reusable styling and the flowing Y position.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageHeight  float64
	contentTopY float64
	tr          func(string) string // UTF-8 to the core fonts' code page
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
		tr:          pdf.UnicodeTranslatorFromDescriptor(""),
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 12)
		s.pdf.SetTextColor(60, 60, 60)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	s.checkAddPage(s.lineHeight)
	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, s.tr(text), "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64) {
	// gofpdf refers to the registered image by name.
	s.pdf.RegisterImageReader(imageName, "PNG", bytes.NewReader(imageBytes))
	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}
	s.checkAddPage(height)
	s.pdf.Image(imageName, pdfMargin+(pdfContentWidth-width)/2, s.currentY, width, height, false, "PNG", 0, "")
	s.currentY += height
	s.addSpacer(2)
}

func (s *pdfStyler) addTable(headers []string, colWidthsRel []float64, rows [][]string) {
	colWidthsAbs := make([]float64, len(colWidthsRel))
	for i, rel := range colWidthsRel {
		colWidthsAbs[i] = rel * pdfContentWidth
	}

	s.checkAddPage(s.lineHeight * 2)
	sX := pdfMargin
	s.applyStyle("tableHeader")
	for i, header := range headers {
		s.pdf.SetXY(sX, s.currentY)
		s.pdf.CellFormat(colWidthsAbs[i], s.lineHeight, header, "1", 0, "C", true, 0, "")
		sX += colWidthsAbs[i]
	}
	s.currentY += s.lineHeight

	s.applyStyle("tableCell")
	for _, row := range rows {
		s.checkAddPage(s.lineHeight)
		sX = pdfMargin
		for i, cellData := range row {
			s.pdf.SetXY(sX, s.currentY)
			s.pdf.CellFormat(colWidthsAbs[i], s.lineHeight, s.tr(cellData), "1", 0, "C", false, 0, "")
			sX += colWidthsAbs[i]
		}
		s.currentY += s.lineHeight
	}
}

func formatStat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 5, 64)
}

func summaryRows(block *analysis.BlockResult) [][]string {
	rows := make([][]string, 0, len(block.Summaries))
	for _, cs := range block.Summaries {
		rows = append(rows, []string{
			cs.Title,
			strconv.Itoa(cs.NumPoints),
			formatStat(cs.MinY),
			formatStat(cs.MaxY),
			formatStat(cs.MeanY),
			formatStat(cs.StdDevY),
			formatStat(cs.MeanRatio),
		})
	}
	return rows
}

// BuildPDFReport writes a booklet with a cover page and one section per
// block: titles, the chart and a per-curve summary table.
func BuildPDFReport(filepath string, info BookletInfo, pages []BookletPage) error {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	styler := newPDFStyler(pdf)
	styler.newPage()

	styler.writeParagraph("Curve Comparison Report", "h1", "C")
	styler.addSpacer(5)
	styler.writeParagraph(fmt.Sprintf("Header file: %s", info.HeaderPath), "normal", "L")
	styler.writeParagraph(fmt.Sprintf("Curve file: %s", info.CurvePath), "normal", "L")
	styler.writeParagraph(fmt.Sprintf("Charts: %d", len(pages)), "normal", "L")

	if len(pages) == 0 {
		styler.addSpacer(5)
		styler.writeParagraph("No chart blocks were produced.", "normal", "L")
		return pdf.OutputFileAndClose(filepath)
	}

	headers := []string{"Curve", "Points", "Min Y", "Max Y", "Mean Y", "Std Dev Y", "Mean Ratio"}
	colWidthsRel := []float64{0.34, 0.1, 0.11, 0.11, 0.11, 0.11, 0.12}

	imgWidth := pdfContentWidth * 0.7
	imgHeight := imgWidth * float64(DefaultHeightPx) / float64(DefaultWidthPx)

	for _, page := range pages {
		b := page.Block
		styler.newPage()
		styler.writeParagraph(fmt.Sprintf("%d. %s", b.Index, b.Settings.Title1), "h1", "L")
		if b.Settings.Title2 != "" {
			styler.writeParagraph(b.Settings.Title2, "h2", "L")
		}
		styler.addSpacer(2)
		if len(page.Image) > 0 {
			styler.addImage(page.Image, fmt.Sprintf("block_%d", b.Index), imgWidth, imgHeight)
		} else {
			styler.writeParagraph("Chart not available.", "normal", "L")
		}
		styler.addTable(headers, colWidthsRel, summaryRows(b))
	}

	return pdf.OutputFileAndClose(filepath)
}
