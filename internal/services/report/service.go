// Package report renders portfolio charts.
package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/interfaces"
	"github.com/stocksim/stocksim/internal/models"
)

// Compile-time interface check
var _ interfaces.ReportService = (*Service)(nil)

// Service implements ReportService on top of the valued portfolio.
type Service struct {
	portfolio interfaces.PortfolioService
	logger    *common.Logger
}

// NewService creates a new report service.
func NewService(portfolio interfaces.PortfolioService, logger *common.Logger) *Service {
	return &Service{
		portfolio: portfolio,
		logger:    logger,
	}
}

// RenderAllocationChart renders a PNG bar chart of current position
// values by symbol. Returns raw PNG bytes.
func (s *Service) RenderAllocationChart(ctx context.Context, userID string) ([]byte, error) {
	positions, _, err := s.portfolio.GetPortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, models.Validationf("Portfolio is empty")
	}

	return renderAllocation(positions)
}

func renderAllocation(positions []*models.PortfolioPosition) ([]byte, error) {
	values := make([]chart.Value, len(positions))
	for i, p := range positions {
		v, _ := p.CurrentValue.Float64()
		values[i] = chart.Value{
			Label: p.Symbol,
			Value: v,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2563eb"), // blue-600
				StrokeColor: drawing.ColorFromHex("2563eb"),
			},
		}
	}

	graph := chart.BarChart{
		Title:    "Portfolio Allocation",
		Width:    900,
		Height:   400,
		BarWidth: 48,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Bars: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
