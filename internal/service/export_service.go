package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/sahana-institute/payroll-api/internal/dto"
	appErrors "github.com/sahana-institute/payroll-api/pkg/errors"
	"github.com/sahana-institute/payroll-api/pkg/export"
)

// ExportFile is a rendered export ready to be written to the response.
type ExportFile struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ExportService renders monthly salary reports as downloadable files.
type ExportService struct {
	payroll *PayrollService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(payroll *PayrollService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		payroll: payroll,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// MonthlyExport renders the month's salary reports in the requested format.
// Supported formats are "csv" and "pdf".
func (s *ExportService) MonthlyExport(ctx context.Context, dateStr, format string) (*ExportFile, error) {
	reports, _, err := s.payroll.MonthlyReports(ctx, dateStr)
	if err != nil {
		return nil, err
	}

	period, err := ResolvePeriod(dateStr)
	if err != nil {
		return nil, err
	}
	month := period.Start.Format("2006-01")

	switch format {
	case "csv", "":
		body, err := s.csv.Render(salarySummaryDataset(reports))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			FileName:    fmt.Sprintf("salary-%s.csv", month),
			ContentType: "text/csv",
			Body:        body,
		}, nil
	case "pdf":
		body, err := s.pdf.RenderDocument(payslipDocument(month, reports))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			FileName:    fmt.Sprintf("payslips-%s.pdf", month),
			ContentType: "application/pdf",
			Body:        body,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format, expected csv or pdf")
	}
}

func salarySummaryDataset(reports []dto.SalaryReport) export.Dataset {
	headers := []string{
		"Teacher", "Collection", "Students", "Gross Pay",
		"Tute Cost", "Postal Fee", "Institute Fee",
		"Manual Deductions", "Total Deductions", "Net Pay",
	}
	rows := make([]map[string]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, map[string]string{
			"Teacher":           r.Teacher.Name,
			"Collection":        money(r.Stats.TotalCollection),
			"Students":          strconv.Itoa(r.Stats.TotalStudents),
			"Gross Pay":         money(r.Stats.GrossPay),
			"Tute Cost":         money(r.Stats.TotalTuteCost),
			"Postal Fee":        money(r.Stats.TotalPostalFee),
			"Institute Fee":     money(r.Stats.TotalInstituteFee),
			"Manual Deductions": money(r.Stats.ManualDeductions),
			"Total Deductions":  money(r.Stats.TotalDeductions),
			"Net Pay":           money(r.Stats.NetPay),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// payslipDocument builds one page per teacher: summary lines on top, the
// per-class breakdown as a table below.
func payslipDocument(month string, reports []dto.SalaryReport) export.Document {
	doc := export.Document{Title: fmt.Sprintf("Salary Report %s", month)}
	for _, r := range reports {
		table := export.Dataset{
			Headers: []string{"Class", "Students", "Collection", "Gross Pay"},
			Rows:    make([]map[string]string, 0, len(r.Details.ByClass)),
		}
		for _, c := range r.Details.ByClass {
			table.Rows = append(table.Rows, map[string]string{
				"Class":      c.ClassName,
				"Students":   strconv.Itoa(c.TotalStudents),
				"Collection": money(c.TotalCollection),
				"Gross Pay":  money(c.GrossPay),
			})
		}
		doc.Sections = append(doc.Sections, export.Section{
			Heading: r.Teacher.Name,
			KeyValues: [][2]string{
				{"Total Collection", money(r.Stats.TotalCollection)},
				{"Gross Pay", money(r.Stats.GrossPay)},
				{"Automatic Deductions", money(r.Stats.AutomaticDeductions)},
				{"Manual Deductions", money(r.Stats.ManualDeductions)},
				{"Net Pay", money(r.Stats.NetPay)},
			},
			Table: &table,
		})
	}
	return doc
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
