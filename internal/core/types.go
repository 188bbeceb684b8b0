package core

import "time"

// EventType classifies a market-moving occurrence.
type EventType string

const (
	EventEarnings    EventType = "earnings"
	EventSECFiling   EventType = "sec_filing"
	EventFDAAction   EventType = "fda_action"
	EventInsiderBuy  EventType = "insider_buy"
	EventInsiderSell EventType = "insider_sell"
	EventMergerNews  EventType = "merger_news"
	EventGuidance    EventType = "guidance"
)

// Direction is the predicted impact direction of an event.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
	DirectionNeutral  Direction = "neutral"
)

// Event is a discrete, timestamped market-moving occurrence as loaded
// from the event store, together with its model scores.
type Event struct {
	ID                string
	Ticker            string
	Date              time.Time
	EventType         EventType
	Sector            string
	ImpactScore       float64
	MLAdjustedScore   *float64
	Direction         Direction
	Confidence        float64
	MLConfidence      *float64
	BearishSignal     bool
	BearishScore      *float64
	HiddenBearishProb *float64
}

// Score returns the ML-adjusted score when present, falling back to
// the base impact score.
func (e Event) Score() float64 {
	if e.MLAdjustedScore != nil {
		return *e.MLAdjustedScore
	}
	return e.ImpactScore
}

// SocialSignal carries social-sentiment readings attached to an event.
type SocialSignal struct {
	Sentiment           float64
	VolumeZScore        float64
	InfluencerSentiment float64
}

// EventData is one immutable simulation input record: an event plus
// the price snapshots needed to evaluate P&L at fixed horizons. A nil
// price pointer means the price was unavailable at that horizon.
type EventData struct {
	EventID           string
	Ticker            string
	Timestamp         time.Time
	EventType         EventType
	Sector            string
	ImpactScore       float64
	MLAdjustedScore   *float64
	Direction         Direction
	Confidence        float64
	MLConfidence      *float64
	BearishSignal     bool
	BearishScore      *float64
	HiddenBearishProb *float64
	Social            *SocialSignal

	PriceAtEvent *float64
	Price1D      *float64
	Price5D      *float64
	Price20D     *float64
}

// SignalName identifies one of the typed signal fields on an EventData.
type SignalName string

const (
	SignalImpactScore         SignalName = "impact_score"
	SignalMLAdjustedScore     SignalName = "ml_adjusted_score"
	SignalDirection           SignalName = "direction"
	SignalConfidence          SignalName = "confidence"
	SignalMLConfidence        SignalName = "ml_confidence"
	SignalBearish             SignalName = "bearish_signal"
	SignalBearishScore        SignalName = "bearish_score"
	SignalHiddenBearishProb   SignalName = "hidden_bearish_prob"
	SignalSocialSentiment     SignalName = "social_sentiment"
	SignalSocialVolumeZScore  SignalName = "social_volume_zscore"
	SignalInfluencerSentiment SignalName = "influencer_sentiment"
)

// SignalKind tags the runtime type of a signal value.
type SignalKind int

const (
	SignalNumber SignalKind = iota
	SignalText
	SignalBool
)

// SignalValue is the value of a single signal on an event. Conditions
// comparing a value of the wrong kind evaluate to false rather than
// erroring.
type SignalValue struct {
	Kind SignalKind
	Num  float64
	Text string
	Flag bool
}

// Number wraps a numeric signal value.
func Number(v float64) SignalValue { return SignalValue{Kind: SignalNumber, Num: v} }

// Text wraps a textual signal value.
func Text(v string) SignalValue { return SignalValue{Kind: SignalText, Text: v} }

// Bool wraps a boolean signal value.
func Bool(v bool) SignalValue { return SignalValue{Kind: SignalBool, Flag: v} }

// Signal looks up a signal by name. The second return is false when
// the signal is absent on this event; absence makes any condition on
// it evaluate to false.
func (e EventData) Signal(name SignalName) (SignalValue, bool) {
	switch name {
	case SignalImpactScore:
		return Number(e.ImpactScore), true
	case SignalMLAdjustedScore:
		if e.MLAdjustedScore == nil {
			return SignalValue{}, false
		}
		return Number(*e.MLAdjustedScore), true
	case SignalDirection:
		if e.Direction == "" {
			return SignalValue{}, false
		}
		return Text(string(e.Direction)), true
	case SignalConfidence:
		return Number(e.Confidence), true
	case SignalMLConfidence:
		if e.MLConfidence == nil {
			return SignalValue{}, false
		}
		return Number(*e.MLConfidence), true
	case SignalBearish:
		return Bool(e.BearishSignal), true
	case SignalBearishScore:
		if e.BearishScore == nil {
			return SignalValue{}, false
		}
		return Number(*e.BearishScore), true
	case SignalHiddenBearishProb:
		if e.HiddenBearishProb == nil {
			return SignalValue{}, false
		}
		return Number(*e.HiddenBearishProb), true
	case SignalSocialSentiment:
		if e.Social == nil {
			return SignalValue{}, false
		}
		return Number(e.Social.Sentiment), true
	case SignalSocialVolumeZScore:
		if e.Social == nil {
			return SignalValue{}, false
		}
		return Number(e.Social.VolumeZScore), true
	case SignalInfluencerSentiment:
		if e.Social == nil {
			return SignalValue{}, false
		}
		return Number(e.Social.InfluencerSentiment), true
	}
	return SignalValue{}, false
}

// EntryConfidence returns the confidence used for position sizing:
// the ML confidence when available, else the base confidence.
func (e EventData) EntryConfidence() float64 {
	if e.MLConfidence != nil {
		return *e.MLConfidence
	}
	return e.Confidence
}

// Float returns a pointer to v. Convenience for optional score fields.
func Float(v float64) *float64 { return &v }
