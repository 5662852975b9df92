package dfm

import (
	"errors"
	"math"
	"testing"
)

func TestQuoteCostHasNoIssuePenalty(t *testing.T) {
	// Arrange
	engine := NewEngine(DefaultConfig())

	// Act
	q, err := engine.QuoteCost(ManufacturingRequest{Material: "pla", Process: "fdm", ProductionVolume: 10}, 5000)

	// Assert
	if err != nil {
		t.Fatalf("QuoteCost() error = %v", err)
	}
	if q.Process != ProcessFDM || q.Material != MaterialPLA {
		t.Errorf("quote = %s/%s, want FDM/PLA", q.Process, q.Material)
	}
	if q.CostEstimate.IssuePenalty != 0 {
		t.Errorf("IssuePenalty = %v, want 0", q.CostEstimate.IssuePenalty)
	}
	if q.CostEstimate.Min < 0 || q.CostEstimate.Max < q.CostEstimate.Min {
		t.Errorf("cost range = [%v, %v]", q.CostEstimate.Min, q.CostEstimate.Max)
	}
	if q.Quantity != 10 || q.CostEstimate.Quantity != 10 {
		t.Errorf("Quantity = %d, want 10", q.Quantity)
	}
	if q.LeadTime.Min < 0 || q.LeadTime.Max < q.LeadTime.Min {
		t.Errorf("lead time = %+v", q.LeadTime)
	}
}

func TestQuoteCostDefaults(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	q, err := engine.QuoteCost(ManufacturingRequest{}, 0)

	if err != nil {
		t.Fatalf("QuoteCost() error = %v", err)
	}
	if q.VolumeMM3 != DefaultQuoteVolumeMM3 || q.Quantity != 1 {
		t.Errorf("quote = %+v, want default volume and quantity 1", q)
	}
}

func TestQuoteCostGrowsWithVolume(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	req := ManufacturingRequest{Material: MaterialAluminum, Process: ProcessCNC, ProductionVolume: 1}

	small, err := engine.QuoteCost(req, 1000)
	if err != nil {
		t.Fatalf("QuoteCost() error = %v", err)
	}
	large, err := engine.QuoteCost(req, 100000)
	if err != nil {
		t.Fatalf("QuoteCost() error = %v", err)
	}

	if large.CostEstimate.UnitCost <= small.CostEstimate.UnitCost {
		t.Errorf("unit cost %v should exceed %v for a larger part", large.CostEstimate.UnitCost, small.CostEstimate.UnitCost)
	}
}

func TestQuoteCostRejectsInvalidVolume(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	for _, v := range []float64{-1, math.Inf(1), math.NaN()} {
		if _, err := engine.QuoteCost(fdmPLA(), v); !errors.Is(err, ErrInvalidQuote) {
			t.Errorf("QuoteCost(%v) error = %v, want ErrInvalidQuote", v, err)
		}
	}
}
