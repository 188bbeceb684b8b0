package core

import "testing"

func TestEvent_ScoreFallback(t *testing.T) {
	ev := Event{ImpactScore: 60}
	if ev.Score() != 60 {
		t.Errorf("expected base score 60, got %f", ev.Score())
	}

	ev.MLAdjustedScore = Float(72)
	if ev.Score() != 72 {
		t.Errorf("adjusted score must win, got %f", ev.Score())
	}
}

func TestEventData_Signal(t *testing.T) {
	ev := EventData{
		ImpactScore:   55,
		Direction:     DirectionPositive,
		BearishSignal: true,
	}

	sv, ok := ev.Signal(SignalImpactScore)
	if !ok || sv.Kind != SignalNumber || sv.Num != 55 {
		t.Errorf("impact_score lookup wrong: %+v ok=%v", sv, ok)
	}

	sv, ok = ev.Signal(SignalDirection)
	if !ok || sv.Kind != SignalText || sv.Text != "positive" {
		t.Errorf("direction lookup wrong: %+v ok=%v", sv, ok)
	}

	sv, ok = ev.Signal(SignalBearish)
	if !ok || sv.Kind != SignalBool || !sv.Flag {
		t.Errorf("bearish lookup wrong: %+v ok=%v", sv, ok)
	}

	if _, ok := ev.Signal(SignalMLAdjustedScore); ok {
		t.Error("absent optional signal must report missing")
	}
	if _, ok := ev.Signal(SignalSocialSentiment); ok {
		t.Error("absent social block must report missing")
	}
	if _, ok := ev.Signal("made_up"); ok {
		t.Error("unknown signal must report missing")
	}
}

func TestEventData_SocialSignals(t *testing.T) {
	ev := EventData{Social: &SocialSignal{Sentiment: 0.4, VolumeZScore: 2.1, InfluencerSentiment: -0.2}}

	if sv, ok := ev.Signal(SignalSocialVolumeZScore); !ok || sv.Num != 2.1 {
		t.Errorf("volume zscore lookup wrong: %+v ok=%v", sv, ok)
	}
	if sv, ok := ev.Signal(SignalInfluencerSentiment); !ok || sv.Num != -0.2 {
		t.Errorf("influencer lookup wrong: %+v ok=%v", sv, ok)
	}
}

func TestEventData_EntryConfidence(t *testing.T) {
	ev := EventData{Confidence: 0.6}
	if ev.EntryConfidence() != 0.6 {
		t.Errorf("expected base confidence, got %f", ev.EntryConfidence())
	}

	ev.MLConfidence = Float(0.8)
	if ev.EntryConfidence() != 0.8 {
		t.Errorf("ml confidence must win, got %f", ev.EntryConfidence())
	}
}
