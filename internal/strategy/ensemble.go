package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/LAIrfc/ai-trading-system/internal/model"
)

var _ Strategy = (*Ensemble)(nil)

// VoteMode selects how member signals are combined into one decision.
type VoteMode string

const (
	// VoteMajority acts when the fraction of members voting a direction
	// reaches the threshold. HOLD votes count toward the denominator only.
	VoteMajority VoteMode = "majority"
	// VoteUnanimous acts only when every member votes the same direction.
	VoteUnanimous VoteMode = "unanimous"
	// VoteAny acts on the first directional vote, SELL taking priority
	// over BUY to protect profits.
	VoteAny VoteMode = "any"
	// VoteWeighted acts on weight*confidence scores. HOLD votes score zero
	// and are excluded from the active total.
	VoteWeighted VoteMode = "weighted"
)

// Member is one voting strategy with its trust weight.
type Member struct {
	Strategy Strategy
	Weight   float64
}

// EnsembleConfig configures the voting aggregator.
type EnsembleConfig struct {
	Mode          VoteMode
	BuyThreshold  float64 // default 0.5
	SellThreshold float64 // default 0.5
}

// Ensemble runs several strategies over the same history and votes on the
// combined action. The final position is always the weight-averaged target
// of every participating member, including the HOLD voters: if part of the
// committee disagrees with selling, that disagreement should show up in the
// suggested exposure rather than be overridden.
type Ensemble struct {
	cfg     EnsembleConfig
	members []Member // sorted by strategy name so votes are deterministic
	minBars int
}

// NewEnsemble validates the configuration and members. A zero member weight
// defaults to 1.0.
func NewEnsemble(cfg EnsembleConfig, members []Member) (*Ensemble, error) {
	if cfg.Mode == "" {
		cfg.Mode = VoteMajority
	}
	switch cfg.Mode {
	case VoteMajority, VoteUnanimous, VoteAny, VoteWeighted:
	default:
		return nil, fmt.Errorf("ensemble: unknown vote mode %q", cfg.Mode)
	}
	if cfg.BuyThreshold == 0 {
		cfg.BuyThreshold = 0.5
	}
	if cfg.SellThreshold == 0 {
		cfg.SellThreshold = 0.5
	}
	if cfg.BuyThreshold < 0 || cfg.BuyThreshold > 1 || cfg.SellThreshold < 0 || cfg.SellThreshold > 1 {
		return nil, fmt.Errorf("ensemble: thresholds must be in [0,1], got buy=%.2f sell=%.2f",
			cfg.BuyThreshold, cfg.SellThreshold)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("ensemble: need at least one member")
	}

	sorted := make([]Member, len(members))
	copy(sorted, members)
	seen := make(map[string]bool, len(sorted))
	minBars := 0
	for i := range sorted {
		if sorted[i].Strategy == nil {
			return nil, fmt.Errorf("ensemble: member %d has nil strategy", i)
		}
		name := sorted[i].Strategy.Name()
		if seen[name] {
			return nil, fmt.Errorf("ensemble: duplicate member %q", name)
		}
		seen[name] = true
		if sorted[i].Weight == 0 {
			sorted[i].Weight = 1.0
		}
		if sorted[i].Weight < 0 {
			return nil, fmt.Errorf("ensemble: member %q has negative weight %.2f", name, sorted[i].Weight)
		}
		if mb := sorted[i].Strategy.MinBars(); mb > minBars {
			minBars = mb
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Strategy.Name() < sorted[j].Strategy.Name()
	})

	return &Ensemble{cfg: cfg, members: sorted, minBars: minBars}, nil
}

func (e *Ensemble) Name() string { return "多策略组合" }

// MinBars is the maximum over all members, so a full run guarantees every
// member can vote on every simulated day.
func (e *Ensemble) MinBars() int { return e.minBars }

type vote struct {
	name   string
	weight float64
	sig    model.Signal
}

func (e *Ensemble) Analyze(bars []model.Bar) (model.Signal, error) {
	var buyVotes, sellVotes, holdVotes []vote

	// Members without enough history sit this vote out instead of
	// dragging the committee toward HOLD.
	for _, m := range e.members {
		if len(bars) < m.Strategy.MinBars() {
			continue
		}
		sig := SafeAnalyze(m.Strategy, bars)
		v := vote{name: m.Strategy.Name(), weight: m.Weight, sig: sig}
		switch sig.Action {
		case model.ActionBuy:
			buyVotes = append(buyVotes, v)
		case model.ActionSell:
			sellVotes = append(sellVotes, v)
		default:
			holdVotes = append(holdVotes, v)
		}
	}

	total := len(buyVotes) + len(sellVotes) + len(holdVotes)
	if total == 0 {
		return model.Signal{
			Action:     model.ActionHold,
			Confidence: 0,
			Position:   0.5,
			Reason:     "无策略可用",
		}, nil
	}

	// Weighted average target position over every participating member.
	totalWeight, weightedPos := 0.0, 0.0
	for _, vs := range [][]vote{buyVotes, sellVotes, holdVotes} {
		for _, v := range vs {
			totalWeight += v.weight
			weightedPos += v.weight * v.sig.Position
		}
	}
	avgPosition := 0.5
	if totalWeight > 0 {
		avgPosition = weightedPos / totalWeight
	}

	var action model.Action
	var conf float64
	var reason string
	switch e.cfg.Mode {
	case VoteUnanimous:
		action, conf, reason = e.voteUnanimous(buyVotes, sellVotes, total)
	case VoteAny:
		action, conf, reason = e.voteAny(buyVotes, sellVotes)
	case VoteWeighted:
		action, conf, reason = e.voteWeighted(buyVotes, sellVotes)
	default:
		action, conf, reason = e.voteMajority(buyVotes, sellVotes, total)
	}

	return model.Signal{
		Action:     action,
		Confidence: round2(conf),
		Position:   round2(avgPosition),
		Reason:     reason,
		Indicators: map[string]float64{
			"买入票":  float64(len(buyVotes)),
			"卖出票":  float64(len(sellVotes)),
			"观望票":  float64(len(holdVotes)),
			"有效策略": float64(total),
			"加权仓位": round2(avgPosition),
		},
	}, nil
}

// voteMajority counts heads. HOLD votes dilute both ratios via the
// denominator but never push either direction.
func (e *Ensemble) voteMajority(buyVotes, sellVotes []vote, total int) (model.Action, float64, string) {
	buyRatio := float64(len(buyVotes)) / float64(total)
	sellRatio := float64(len(sellVotes)) / float64(total)

	if buyRatio >= e.cfg.BuyThreshold {
		return model.ActionBuy, avgConfidence(buyVotes),
			fmt.Sprintf("多数看多(%d/%d): %s", len(buyVotes), total, voteNames(buyVotes))
	}
	if sellRatio >= e.cfg.SellThreshold {
		return model.ActionSell, avgConfidence(sellVotes),
			fmt.Sprintf("多数看空(%d/%d): %s", len(sellVotes), total, voteNames(sellVotes))
	}
	return model.ActionHold, 0.5,
		fmt.Sprintf("信号分歧(买%d/卖%d/持%d)，观望",
			len(buyVotes), len(sellVotes), total-len(buyVotes)-len(sellVotes))
}

func (e *Ensemble) voteUnanimous(buyVotes, sellVotes []vote, total int) (model.Action, float64, string) {
	if len(buyVotes) == total {
		return model.ActionBuy, avgConfidence(buyVotes),
			fmt.Sprintf("全票看多(%d/%d)，强势买入", total, total)
	}
	if len(sellVotes) == total {
		return model.ActionSell, avgConfidence(sellVotes),
			fmt.Sprintf("全票看空(%d/%d)，强势卖出", total, total)
	}
	return model.ActionHold, 0.5,
		fmt.Sprintf("未达成共识(买%d/卖%d/%d)，观望", len(buyVotes), len(sellVotes), total)
}

// voteAny fires on the single most confident directional vote. SELL wins
// ties with BUY outright because capital protection beats opportunity.
func (e *Ensemble) voteAny(buyVotes, sellVotes []vote) (model.Action, float64, string) {
	if len(sellVotes) > 0 {
		best := mostConfident(sellVotes)
		return model.ActionSell, best.sig.Confidence,
			fmt.Sprintf("%s发出卖出: %s", best.name, best.sig.Reason)
	}
	if len(buyVotes) > 0 {
		best := mostConfident(buyVotes)
		return model.ActionBuy, best.sig.Confidence,
			fmt.Sprintf("%s发出买入: %s", best.name, best.sig.Reason)
	}
	return model.ActionHold, 0.5, "所有策略均持观望"
}

// voteWeighted scores each side as sum(weight*confidence). HOLD votes are
// excluded from the active total, so a lone directional voter can carry the
// decision when everyone else abstains.
func (e *Ensemble) voteWeighted(buyVotes, sellVotes []vote) (model.Action, float64, string) {
	buyScore, sellScore := 0.0, 0.0
	for _, v := range buyVotes {
		buyScore += v.weight * v.sig.Confidence
	}
	for _, v := range sellVotes {
		sellScore += v.weight * v.sig.Confidence
	}

	active := buyScore + sellScore
	if active == 0 {
		return model.ActionHold, 0.5, "无有效方向性信号"
	}

	buyPct := buyScore / active
	sellPct := sellScore / active

	if buyPct > sellPct && buyPct >= e.cfg.BuyThreshold {
		return model.ActionBuy, buyPct,
			fmt.Sprintf("加权看多(%.0f%%): %s", buyPct*100, voteNames(buyVotes))
	}
	if sellPct > buyPct && sellPct >= e.cfg.SellThreshold {
		return model.ActionSell, sellPct,
			fmt.Sprintf("加权看空(%.0f%%): %s", sellPct*100, voteNames(sellVotes))
	}
	return model.ActionHold, 0.5,
		fmt.Sprintf("加权信号中性(买%.0f%%/卖%.0f%%)，观望", buyPct*100, sellPct*100)
}

func avgConfidence(votes []vote) float64 {
	sum := 0.0
	for _, v := range votes {
		sum += v.sig.Confidence
	}
	return sum / float64(len(votes))
}

// mostConfident returns the highest-confidence vote. Votes arrive in member
// name order, so ties break toward the alphabetically first member.
func mostConfident(votes []vote) vote {
	best := votes[0]
	for _, v := range votes[1:] {
		if v.sig.Confidence > best.sig.Confidence {
			best = v
		}
	}
	return best
}

func voteNames(votes []vote) string {
	names := make([]string, len(votes))
	for i, v := range votes {
		names[i] = v.name
	}
	return strings.Join(names, ", ")
}
