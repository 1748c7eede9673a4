package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/sahana-institute/payroll-api/internal/dto"
)

// DashboardService folds the month's salary reports into institute-level
// totals for the admin landing page.
type DashboardService struct {
	payroll *PayrollService
	logger  *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(payroll *PayrollService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{payroll: payroll, logger: logger}
}

// AdminDashboard summarises the month containing dateStr.
func (s *DashboardService) AdminDashboard(ctx context.Context, dateStr string) (*dto.AdminDashboardResponse, error) {
	reports, _, err := s.payroll.MonthlyReports(ctx, dateStr)
	if err != nil {
		return nil, err
	}

	period, err := ResolvePeriod(dateStr)
	if err != nil {
		return nil, err
	}

	resp := &dto.AdminDashboardResponse{
		Month:        period.Start.Format("2006-01"),
		Period:       period,
		TeacherCount: len(reports),
		TopClasses:   make([]dto.ClassRevenue, 0, 5),
	}

	classTotals := make(map[string]*dto.ClassRevenue)
	order := make([]string, 0, 8)
	for _, r := range reports {
		resp.TotalCollection += r.Stats.TotalCollection
		resp.TotalStudents += r.Stats.TotalStudents
		resp.TotalNetPay += r.Stats.NetPay
		resp.InstituteRetained += r.Stats.InstituteRetained

		for _, c := range r.Details.ByClass {
			entry, ok := classTotals[c.ClassID]
			if !ok {
				entry = &dto.ClassRevenue{ClassID: c.ClassID, ClassName: c.ClassName}
				classTotals[c.ClassID] = entry
				order = append(order, c.ClassID)
			}
			entry.TotalCollection += c.TotalCollection
			entry.TotalStudents += c.TotalStudents
		}
	}

	ranked := make([]dto.ClassRevenue, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, *classTotals[id])
	}
	// Highest revenue first; stable so equal-revenue classes keep
	// first-seen order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalCollection > ranked[j].TotalCollection
	})
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	resp.TopClasses = ranked

	return resp, nil
}
