package types

import "time"

type Action string

const (
	// ActionBuy tells the lifecycle manager to open a long position or close a short one
	ActionBuy Action = "buy"
	// ActionSell tells the lifecycle manager to close a long position or open a short one
	ActionSell Action = "sell"
	// ActionHold tells the lifecycle manager to take no action
	ActionHold Action = "hold"
)

// Opposes reports whether the action points against a position on the given side.
func (a Action) Opposes(side PositionSide) bool {
	switch side {
	case PositionSideLong:
		return a == ActionSell
	case PositionSideShort:
		return a == ActionBuy
	default:
		return false
	}
}

// Signal is the continuous mode output of the scorer.
type Signal struct {
	// Symbol is the symbol the signal was computed for
	Symbol string `json:"symbol" yaml:"symbol"`
	// Time is the time of the candle the signal was computed on
	Time time.Time `json:"time" yaml:"time"`
	// Action is the suggested action
	Action Action `json:"action" yaml:"action"`
	// Confidence is in [0, 1]
	Confidence float64 `json:"confidence" yaml:"confidence"`
	// Score is the uncapped confidence times 100
	Score float64 `json:"score" yaml:"score"`
	// Price is the close of the candle the signal was computed on
	Price float64 `json:"price" yaml:"price"`
	// Reasons lists every rule that contributed to the confidence
	Reasons []string `json:"reasons" yaml:"reasons"`
}

// HoldSignal returns the neutral signal used whenever a signal cannot be computed.
func HoldSignal(reason string) Signal {
	reasons := []string{}
	if reason != "" {
		reasons = append(reasons, reason)
	}

	return Signal{
		Symbol:     "",
		Time:       time.Time{},
		Action:     ActionHold,
		Confidence: 0,
		Score:      0,
		Price:      0,
		Reasons:    reasons,
	}
}

// Discrete signal component keys.
const (
	DiscreteKeyRSI   = "rsi"
	DiscreteKeyMACD  = "macd"
	DiscreteKeyADX   = "adx"
	DiscreteKeyTrend = "trend"
)

// DiscreteScore is the discrete mode output of the scorer.
type DiscreteScore struct {
	TotalScore int            `json:"total_score" yaml:"total_score"`
	Signals    map[string]int `json:"signals" yaml:"signals"`
	Strength   float64        `json:"strength" yaml:"strength"`
}

// NeutralScore returns the zero discrete score.
func NeutralScore() DiscreteScore {
	return DiscreteScore{
		TotalScore: 0,
		Signals:    map[string]int{},
		Strength:   0,
	}
}
