package strategy

import (
	"math"
	"strings"
	"testing"

	"github.com/LAIrfc/ai-trading-system/internal/model"
)

func fixedMember(name string, weight float64, action model.Action, confidence, position float64) Member {
	return Member{
		Strategy: &stubStrategy{
			name:    name,
			minBars: 1,
			sig:     model.NewSignal(action, confidence, position, name+" vote"),
		},
		Weight: weight,
	}
}

func mustEnsemble(t *testing.T, cfg EnsembleConfig, members []Member) *Ensemble {
	t.Helper()
	e, err := NewEnsemble(cfg, members)
	if err != nil {
		t.Fatalf("NewEnsemble: %v", err)
	}
	return e
}

func analyze(t *testing.T, e *Ensemble) model.Signal {
	t.Helper()
	sig, err := e.Analyze(makeBars(10))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	return sig
}

func TestEnsemble_MajorityArithmetic(t *testing.T) {
	// Three BUY voters at 0.6/0.7/0.8 plus two HOLD voters: ratio 3/5
	// clears the 0.5 threshold and confidence averages to 0.70.
	members := []Member{
		fixedMember("a", 1, model.ActionBuy, 0.6, 0.8),
		fixedMember("b", 1, model.ActionBuy, 0.7, 0.8),
		fixedMember("c", 1, model.ActionBuy, 0.8, 0.8),
		fixedMember("d", 1, model.ActionHold, 0.5, 0.5),
		fixedMember("e", 1, model.ActionHold, 0.5, 0.5),
	}
	e := mustEnsemble(t, EnsembleConfig{Mode: VoteMajority, BuyThreshold: 0.5, SellThreshold: 0.5}, members)

	sig := analyze(t, e)
	if sig.Action != model.ActionBuy {
		t.Fatalf("action = %s, want BUY", sig.Action)
	}
	if math.Abs(sig.Confidence-0.70) > 1e-9 {
		t.Errorf("confidence = %.4f, want 0.70", sig.Confidence)
	}
	if sig.Indicators["买入票"] != 3 || sig.Indicators["观望票"] != 2 {
		t.Errorf("unexpected vote counts: %v", sig.Indicators)
	}
}

func TestEnsemble_MajorityHoldBlocExcludedFromNumerator(t *testing.T) {
	// Two BUY out of five participants is below the 0.5 threshold even
	// though no one voted SELL.
	members := []Member{
		fixedMember("a", 1, model.ActionBuy, 0.9, 0.8),
		fixedMember("b", 1, model.ActionBuy, 0.9, 0.8),
		fixedMember("c", 1, model.ActionHold, 0.5, 0.5),
		fixedMember("d", 1, model.ActionHold, 0.5, 0.5),
		fixedMember("e", 1, model.ActionHold, 0.5, 0.5),
	}
	e := mustEnsemble(t, EnsembleConfig{Mode: VoteMajority}, members)

	if sig := analyze(t, e); sig.Action != model.ActionHold {
		t.Errorf("action = %s, want HOLD (buy ratio 2/5 below threshold)", sig.Action)
	}
}

func TestEnsemble_WeightedHoldExclusion(t *testing.T) {
	// A weight-5 HOLD voter must not dilute the lone BUY voter's score.
	members := []Member{
		fixedMember("buyer", 1, model.ActionBuy, 0.8, 0.9),
		fixedMember("holder", 5, model.ActionHold, 0.5, 0.5),
	}
	e := mustEnsemble(t, EnsembleConfig{Mode: VoteWeighted, BuyThreshold: 0.5, SellThreshold: 0.5}, members)

	sig := analyze(t, e)
	if sig.Action != model.ActionBuy {
		t.Fatalf("action = %s, want BUY (buy_pct = 1.0)", sig.Action)
	}
	if sig.Confidence != 1.0 {
		t.Errorf("confidence = %.2f, want 1.0 (buy score owns the active total)", sig.Confidence)
	}
	// The HOLD voter still dominates the weighted average position:
	// (1*0.9 + 5*0.5) / 6 = 0.57.
	if math.Abs(sig.Position-0.57) > 1e-9 {
		t.Errorf("position = %.4f, want 0.57", sig.Position)
	}
}

func TestEnsemble_WeightedAllHold(t *testing.T) {
	members := []Member{
		fixedMember("a", 1, model.ActionHold, 0.5, 0.4),
		fixedMember("b", 2, model.ActionHold, 0.5, 0.6),
	}
	e := mustEnsemble(t, EnsembleConfig{Mode: VoteWeighted}, members)

	sig := analyze(t, e)
	if sig.Action != model.ActionHold {
		t.Errorf("action = %s, want HOLD when no directional score exists", sig.Action)
	}
}

func TestEnsemble_AnySellPriority(t *testing.T) {
	// SELL is checked before BUY regardless of confidence.
	members := []Member{
		fixedMember("buyer", 1, model.ActionBuy, 0.9, 0.8),
		fixedMember("seller", 1, model.ActionSell, 0.6, 0.1),
	}
	e := mustEnsemble(t, EnsembleConfig{Mode: VoteAny}, members)

	sig := analyze(t, e)
	if sig.Action != model.ActionSell {
		t.Fatalf("action = %s, want SELL (sell priority)", sig.Action)
	}
	if sig.Confidence != 0.6 {
		t.Errorf("confidence = %.2f, want the seller's 0.6", sig.Confidence)
	}
	if !strings.Contains(sig.Reason, "seller") {
		t.Errorf("reason should name the seller, got %q", sig.Reason)
	}
}

func TestEnsemble_Unanimous(t *testing.T) {
	agree := []Member{
		fixedMember("a", 1, model.ActionSell, 0.6, 0.0),
		fixedMember("b", 1, model.ActionSell, 0.8, 0.1),
	}
	e := mustEnsemble(t, EnsembleConfig{Mode: VoteUnanimous}, agree)
	sig := analyze(t, e)
	if sig.Action != model.ActionSell {
		t.Fatalf("action = %s, want SELL", sig.Action)
	}
	if math.Abs(sig.Confidence-0.70) > 1e-9 {
		t.Errorf("confidence = %.4f, want 0.70", sig.Confidence)
	}

	split := []Member{
		fixedMember("a", 1, model.ActionSell, 0.6, 0.0),
		fixedMember("b", 1, model.ActionBuy, 0.8, 0.9),
	}
	e2 := mustEnsemble(t, EnsembleConfig{Mode: VoteUnanimous}, split)
	if sig := analyze(t, e2); sig.Action != model.ActionHold {
		t.Errorf("action = %s, want HOLD on split vote", sig.Action)
	}
}

func TestEnsemble_MemberWithoutHistorySitsOut(t *testing.T) {
	// The hungry member needs 100 bars and is excluded, leaving one BUY
	// out of one participant.
	hungry := Member{Strategy: &stubStrategy{name: "hungry", minBars: 100,
		sig: model.NewSignal(model.ActionSell, 0.9, 0.0, "never votes")}}
	members := []Member{
		fixedMember("buyer", 1, model.ActionBuy, 0.7, 0.8),
		hungry,
	}
	e := mustEnsemble(t, EnsembleConfig{Mode: VoteMajority}, members)

	sig, err := e.Analyze(makeBars(10))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if sig.Action != model.ActionBuy {
		t.Errorf("action = %s, want BUY (1/1 participants)", sig.Action)
	}
	if sig.Indicators["有效策略"] != 1 {
		t.Errorf("participants = %.0f, want 1", sig.Indicators["有效策略"])
	}
}

func TestEnsemble_FailingMemberVotesHold(t *testing.T) {
	failing := Member{Strategy: &stubStrategy{name: "failing", minBars: 1, panics: true}, Weight: 1}
	members := []Member{
		fixedMember("buyer", 1, model.ActionBuy, 0.7, 0.8),
		failing,
	}
	e := mustEnsemble(t, EnsembleConfig{Mode: VoteMajority}, members)

	sig := analyze(t, e)
	if sig.Indicators["有效策略"] != 2 {
		t.Errorf("participants = %.0f, want 2 (failure degrades to HOLD, not exclusion)", sig.Indicators["有效策略"])
	}
	if sig.Indicators["观望票"] != 1 {
		t.Errorf("hold votes = %.0f, want 1", sig.Indicators["观望票"])
	}
}

func TestEnsemble_Determinism(t *testing.T) {
	members := []Member{
		fixedMember("z", 1, model.ActionSell, 0.8, 0.0),
		fixedMember("a", 1, model.ActionSell, 0.8, 0.1),
		fixedMember("m", 1, model.ActionHold, 0.5, 0.5),
	}
	e := mustEnsemble(t, EnsembleConfig{Mode: VoteMajority, SellThreshold: 0.5}, members)

	first := analyze(t, e)
	for i := 0; i < 20; i++ {
		again := analyze(t, e)
		if again.Reason != first.Reason || again.Confidence != first.Confidence {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
	// Names in the reason follow sorted member order.
	if !strings.Contains(first.Reason, "a, z") {
		t.Errorf("reason should list sellers in name order, got %q", first.Reason)
	}
}

func TestNewEnsemble_Validation(t *testing.T) {
	ok := []Member{fixedMember("a", 1, model.ActionHold, 0.5, 0.5)}

	tests := []struct {
		name    string
		cfg     EnsembleConfig
		members []Member
	}{
		{"unknown mode", EnsembleConfig{Mode: "plurality"}, ok},
		{"threshold above one", EnsembleConfig{BuyThreshold: 1.5}, ok},
		{"negative threshold", EnsembleConfig{SellThreshold: -0.1}, ok},
		{"no members", EnsembleConfig{}, nil},
		{"nil strategy", EnsembleConfig{}, []Member{{Strategy: nil}}},
		{"negative weight", EnsembleConfig{}, []Member{
			{Strategy: &stubStrategy{name: "a", minBars: 1}, Weight: -1},
		}},
		{"duplicate names", EnsembleConfig{}, []Member{
			fixedMember("a", 1, model.ActionHold, 0.5, 0.5),
			fixedMember("a", 1, model.ActionHold, 0.5, 0.5),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEnsemble(tt.cfg, tt.members); err == nil {
				t.Error("expected a construction error")
			}
		})
	}
}

func TestEnsemble_MinBarsIsMemberMax(t *testing.T) {
	members := []Member{
		{Strategy: &stubStrategy{name: "small", minBars: 10}},
		{Strategy: &stubStrategy{name: "big", minBars: 80}},
	}
	e := mustEnsemble(t, EnsembleConfig{}, members)
	if e.MinBars() != 80 {
		t.Errorf("MinBars = %d, want 80", e.MinBars())
	}
}

func TestDefaultMembers(t *testing.T) {
	members, err := DefaultMembers()
	if err != nil {
		t.Fatalf("DefaultMembers: %v", err)
	}
	if len(members) != 6 {
		t.Fatalf("got %d members, want 6", len(members))
	}
	e := mustEnsemble(t, EnsembleConfig{}, members)
	if e.MinBars() < 60 {
		t.Errorf("MinBars = %d, expected at least the momentum warm-up", e.MinBars())
	}
}
