package strategy

// SizingMethod selects the position-sizing policy.
type SizingMethod string

const (
	SizeFixedAmount        SizingMethod = "fixed_amount"
	SizeFixedPercent       SizingMethod = "fixed_percent"
	SizeKelly              SizingMethod = "kelly"
	SizeVolatilityAdjusted SizingMethod = "volatility_adjusted"
	SizeConfidenceScaled   SizingMethod = "confidence_scaled"
)

// Kelly sizing assumptions: assumed payoff ratio and fraction cap.
const (
	kellyWinLossRatio = 1.5
	kellyMaxFraction  = 0.25
)

// Volatility-adjusted sizing constants.
const (
	targetRiskPct = 0.02
	volatilityMin = 0.005
)

// PositionConfig converts portfolio state and signal confidence into
// a dollar trade size.
type PositionConfig struct {
	Method             SizingMethod `json:"method"`
	FixedAmount        float64      `json:"fixed_amount,omitempty"`
	PortfolioPercent   float64      `json:"portfolio_percent,omitempty"`
	MaxPositionPercent float64      `json:"max_position_percent"`
	MinPositionSize    float64      `json:"min_position_size"`
	MaxPositions       int          `json:"max_positions"`
}

// DefaultPositionConfig returns a conservative fixed-percent policy.
func DefaultPositionConfig() PositionConfig {
	return PositionConfig{
		Method:             SizeFixedPercent,
		PortfolioPercent:   0.1,
		MaxPositionPercent: 0.2,
		MinPositionSize:    100,
		MaxPositions:       10,
	}
}

// CalculateSize returns the dollar size for a new position. The raw
// size is always clamped to MaxPositionPercent of portfolio value,
// and zeroed when it falls below MinPositionSize.
func (p PositionConfig) CalculateSize(portfolioValue, confidence, volatility float64) float64 {
	if portfolioValue <= 0 {
		return 0
	}

	var size float64
	switch p.Method {
	case SizeFixedAmount:
		size = p.FixedAmount
	case SizeFixedPercent:
		size = portfolioValue * p.PortfolioPercent
	case SizeKelly:
		winProb := 0.5 + confidence*0.2
		fraction := winProb - (1-winProb)/kellyWinLossRatio
		if fraction < 0 {
			fraction = 0
		}
		if fraction > kellyMaxFraction {
			fraction = kellyMaxFraction
		}
		size = portfolioValue * fraction
	case SizeVolatilityAdjusted:
		vol := volatility
		if vol < volatilityMin {
			vol = volatilityMin
		}
		size = portfolioValue * targetRiskPct / vol
	case SizeConfidenceScaled:
		size = portfolioValue * p.PortfolioPercent * (0.5 + confidence*0.5)
	default:
		size = portfolioValue * p.PortfolioPercent
	}

	if maxSize := portfolioValue * p.MaxPositionPercent; p.MaxPositionPercent > 0 && size > maxSize {
		size = maxSize
	}
	if size < p.MinPositionSize {
		return 0
	}
	return size
}
