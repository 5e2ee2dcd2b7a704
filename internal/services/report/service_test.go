package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksim/stocksim/internal/common"
	"github.com/stocksim/stocksim/internal/models"
)

type stubPortfolio struct {
	positions []*models.PortfolioPosition
}

func (s *stubPortfolio) GetPortfolio(ctx context.Context, userID string) ([]*models.PortfolioPosition, *models.PortfolioSummary, error) {
	return s.positions, &models.PortfolioSummary{}, nil
}

func position(symbol string, value string) *models.PortfolioPosition {
	return &models.PortfolioPosition{
		HoldingView: models.HoldingView{Symbol: symbol},
		PositionValue: models.PositionValue{
			CurrentValue: decimal.RequireFromString(value),
		},
	}
}

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderAllocationChart(t *testing.T) {
	svc := NewService(&stubPortfolio{positions: []*models.PortfolioPosition{
		position("AAPL", "1100"),
		position("MSFT", "250"),
	}}, common.NewSilentLogger())

	png, err := svc.RenderAllocationChart(context.Background(), "u1")
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderAllocationChart_EmptyPortfolio(t *testing.T) {
	svc := NewService(&stubPortfolio{}, common.NewSilentLogger())

	_, err := svc.RenderAllocationChart(context.Background(), "u1")
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
}
