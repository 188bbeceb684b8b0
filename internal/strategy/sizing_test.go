package strategy

import (
	"math"
	"testing"
)

func TestCalculateSize_FixedAmount(t *testing.T) {
	p := PositionConfig{Method: SizeFixedAmount, FixedAmount: 5000, MaxPositionPercent: 0.2, MinPositionSize: 100}

	if got := p.CalculateSize(100_000, 0.5, 0); got != 5000 {
		t.Errorf("expected 5000, got %f", got)
	}
}

func TestCalculateSize_FixedPercent(t *testing.T) {
	p := PositionConfig{Method: SizeFixedPercent, PortfolioPercent: 0.1, MaxPositionPercent: 0.2, MinPositionSize: 100}

	if got := p.CalculateSize(100_000, 0.5, 0); got != 10_000 {
		t.Errorf("expected 10000, got %f", got)
	}
}

func TestCalculateSize_ClampsToMaxPercent(t *testing.T) {
	p := PositionConfig{Method: SizeFixedAmount, FixedAmount: 50_000, MaxPositionPercent: 0.2, MinPositionSize: 100}

	if got := p.CalculateSize(100_000, 0.5, 0); got != 20_000 {
		t.Errorf("expected clamp to 20000, got %f", got)
	}
}

func TestCalculateSize_ZeroBelowMinimum(t *testing.T) {
	p := PositionConfig{Method: SizeFixedPercent, PortfolioPercent: 0.001, MaxPositionPercent: 0.2, MinPositionSize: 500}

	if got := p.CalculateSize(100_000, 0.5, 0); got != 0 {
		t.Errorf("size below minimum must be zero, got %f", got)
	}
}

func TestCalculateSize_Kelly(t *testing.T) {
	p := PositionConfig{Method: SizeKelly, MaxPositionPercent: 1, MinPositionSize: 0}

	// confidence 0.5: winProb 0.6, fraction 0.6 - 0.4/1.5
	want := 100_000 * (0.6 - 0.4/1.5)
	if got := p.CalculateSize(100_000, 0.5, 0); math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %f, got %f", want, got)
	}

	// High confidence caps at the max fraction.
	if got := p.CalculateSize(100_000, 1.0, 0); got != 100_000*kellyMaxFraction {
		t.Errorf("expected fraction cap %f, got %f", 100_000*kellyMaxFraction, got)
	}
}

func TestCalculateSize_VolatilityAdjusted(t *testing.T) {
	p := PositionConfig{Method: SizeVolatilityAdjusted, MaxPositionPercent: 1, MinPositionSize: 0}

	if got := p.CalculateSize(100_000, 0.5, 0.04); got != 100_000*0.02/0.04 {
		t.Errorf("expected 50000, got %f", got)
	}

	// Volatility is floored so near-zero vol cannot explode the size.
	floored := p.CalculateSize(100_000, 0.5, 0.000001)
	if floored != 100_000*0.02/volatilityMin {
		t.Errorf("expected floor at %f, got %f", 100_000*0.02/volatilityMin, floored)
	}
}

func TestCalculateSize_ConfidenceScaled(t *testing.T) {
	p := PositionConfig{Method: SizeConfidenceScaled, PortfolioPercent: 0.1, MaxPositionPercent: 0.2, MinPositionSize: 0}

	// Zero confidence halves the base allocation.
	if got := p.CalculateSize(100_000, 0, 0); got != 5000 {
		t.Errorf("expected 5000 at zero confidence, got %f", got)
	}
	// Full confidence uses the full allocation.
	if got := p.CalculateSize(100_000, 1, 0); got != 10_000 {
		t.Errorf("expected 10000 at full confidence, got %f", got)
	}
}

func TestCalculateSize_EmptyPortfolio(t *testing.T) {
	p := DefaultPositionConfig()
	if got := p.CalculateSize(0, 0.5, 0); got != 0 {
		t.Errorf("zero portfolio must size zero, got %f", got)
	}
}
