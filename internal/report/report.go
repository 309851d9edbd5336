package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/LAIrfc/ai-trading-system/internal/backtest"
	"github.com/LAIrfc/ai-trading-system/internal/model"
)

// FormatBacktestReport renders a backtest summary for terminal display.
func FormatBacktestReport(code, strategyName string, initialCash float64, r *backtest.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 回测报告 | %s | %s\n\n", code, strategyName))
	b.WriteString(fmt.Sprintf("初始资金: ¥%s\n", humanize.CommafWithDigits(initialCash, 2)))
	b.WriteString(fmt.Sprintf("最终市值: ¥%s\n", humanize.CommafWithDigits(r.FinalValue, 2)))
	b.WriteString(fmt.Sprintf("总收益率: %+.2f%%\n", r.TotalReturn))
	b.WriteString(fmt.Sprintf("年化收益: %+.2f%%\n", r.AnnualizedReturn))
	b.WriteString(fmt.Sprintf("最大回撤: %.2f%%\n", r.MaxDrawdown))
	b.WriteString(fmt.Sprintf("夏普比率: %.2f\n", r.Sharpe))
	b.WriteString(fmt.Sprintf("交易次数: %d | 胜率: %.1f%%\n", r.TradeCount, r.WinRate))

	if len(r.Trades) > 0 {
		b.WriteString("\n📝 交易明细:\n")
		for _, t := range r.Trades {
			b.WriteString(formatTrade(t))
		}
	}

	return b.String()
}

func formatTrade(t model.TradeRecord) string {
	emoji := "🟢"
	pnl := ""
	if t.Action == model.ActionSell {
		emoji = "🔴"
		pnl = fmt.Sprintf(" 盈亏%+.2f%%", t.PnlPct)
	}
	return fmt.Sprintf("  %s %s %s %d股 @ %.2f%s | %s\n",
		emoji, t.Date.Format("2006-01-02"), t.Action, t.Shares, t.Price, pnl, t.Reason)
}

// FormatSignal renders one daily signal evaluation.
func FormatSignal(code string, price float64, sig model.Signal) string {
	var b strings.Builder

	emoji := "⏸️"
	switch sig.Action {
	case model.ActionBuy:
		emoji = "🟢"
	case model.ActionSell:
		emoji = "🔴"
	}

	b.WriteString(fmt.Sprintf("%s %s | %s\n", emoji, code, sig.Action))
	b.WriteString(fmt.Sprintf("当前价格: %.2f\n", price))
	b.WriteString(fmt.Sprintf("置信度: %.0f%% | 建议仓位: %.0f%%\n", sig.Confidence*100, sig.Position*100))
	b.WriteString(fmt.Sprintf("理由: %s\n", sig.Reason))

	if len(sig.Indicators) > 0 {
		keys := make([]string, 0, len(sig.Indicators))
		for k := range sig.Indicators {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("指标: ")
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%.2f", k, sig.Indicators[k]))
		}
		b.WriteString(strings.Join(parts, " | "))
		b.WriteString("\n")
	}

	return b.String()
}
