package project

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Export formats accepted by WriteExport.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const xlsxSheet = "Projects"

var exportHeader = []string{
	"שם הפרויקט",
	"תיאור הפרויקט",
	"שם הלקוח",
	"טלפון לקוח",
	"טלפון נוסף",
	"וואטסאפ",
	"וואטסאפ נוסף",
	"אימייל לקוח",
	"סטטוס עבודה",
	"רמת עדיפות",
	"מחיר",
	"מטבע",
	"סטטוס תשלום",
	"סטטוס השלמה",
	"תאריך יצירה",
	"תאריך עדכון",
	"נתיב תיקייה",
	"קישור תיקייה",
	"מספר משימות",
	"משימות שהושלמו",
}

const utf8BOM = "\ufeff"

// ExportCSV writes the collection as CSV for spreadsheet tools.
func (s *Store) ExportCSV(w io.Writer) error {
	return WriteCSV(w, s.List(), s.opts.Location)
}

// ExportXLSX writes the collection as a right-to-left workbook.
func (s *Store) ExportXLSX(w io.Writer) error {
	return WriteXLSX(w, s.List(), s.opts.Location)
}

// ExportFileName returns projects_export_<date>.<ext> using the UTC date.
func ExportFileName(now time.Time, ext string) string {
	return fmt.Sprintf("projects_export_%s.%s", now.UTC().Format(time.DateOnly), ext)
}

// WriteExport writes an export file into dir and returns its path.
func (s *Store) WriteExport(dir, format string) (string, error) {
	var write func(io.Writer) error
	switch format {
	case FormatCSV:
		write = s.ExportCSV
	case FormatXLSX:
		write = s.ExportXLSX
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, ExportFileName(s.opts.Now(), format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	s.logger.Info("exported projects", "path", path, "format", format)
	return path, nil
}

// WriteCSV writes a BOM, a header row and one row per project. Every field
// is quoted and rows end with CRLF.
func WriteCSV(w io.Writer, projects []Project, loc *time.Location) error {
	var b strings.Builder
	b.WriteString(utf8BOM)
	writeCSVRow(&b, exportHeader)
	for _, p := range projects {
		writeCSVRow(&b, exportRow(p, loc))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
}

// WriteXLSX writes the export rows into a single right-to-left sheet.
func WriteXLSX(w io.Writer, projects []Project, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	rtl := true
	if err := f.SetSheetView(xlsxSheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
		return fmt.Errorf("setting sheet view: %w", err)
	}

	if err := f.SetSheetRow(xlsxSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, p := range projects {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := exportRow(p, loc)
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func exportRow(p Project, loc *time.Location) []string {
	return []string{
		p.ProjectName,
		p.ProjectDescription,
		p.ClientName,
		p.ClientPhone,
		p.ClientPhone2,
		p.ClientWhatsapp,
		p.ClientWhatsapp2,
		p.ClientEmail,
		string(p.WorkStatus),
		string(p.Priority),
		formatPrice(p.Price),
		p.Currency,
		yesNo(p.IsPaid, "שולם", "לא שולם"),
		yesNo(p.IsCompleted, "הושלם", "לא הושלם"),
		formatDate(p.CreatedAt, loc),
		formatDate(p.UpdatedAt, loc),
		p.FolderPath,
		p.FolderLink,
		strconv.Itoa(len(p.Tasks)),
		fmt.Sprintf("%d/%d", p.CompletedSubTasks(), len(p.Tasks)),
	}
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

// formatDate renders d.M.yyyy as used in Hebrew locales.
func formatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2.1.2006")
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
