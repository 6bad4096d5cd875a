package output

import (
	"fmt"
	"strings"

	"github.com/harborlight-systems/engagewatch/internal/impact"
	"github.com/harborlight-systems/engagewatch/internal/promoter"
)

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// ScoreBar renders a visual progress bar for a 0-100 score.
// Example: "████████░░ 80/100"
func ScoreBar(score float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((score / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	var style func(...string) string
	switch {
	case score >= 70:
		style = StyleSuccess.Render
	case score >= 40:
		style = StyleWarning.Render
	default:
		style = StyleError.Render
	}

	return fmt.Sprintf("%s %s", style(bar), StyleMuted.Render(fmt.Sprintf("%.0f/100", score)))
}

// TrendGlyph returns a styled arrow for a retention trend.
func TrendGlyph(t impact.Trend) string {
	switch t {
	case impact.TrendUp:
		return StyleSuccess.Render("▲ up")
	case impact.TrendDown:
		return StyleError.Render("▼ down")
	default:
		return StyleMuted.Render("─ steady")
	}
}

// DeltaArrow returns a styled indicator for a run-over-run delta.
// Positive deltas render as gains, negative as losses, zero as a dash.
func DeltaArrow(delta float64) string {
	switch {
	case delta > 0:
		return StyleSuccess.Render(fmt.Sprintf("▲ +%.1f", delta))
	case delta < 0:
		return StyleError.Render(fmt.Sprintf("▼ %.1f", delta))
	default:
		return StyleMuted.Render("─")
	}
}

// ROI formats a nullable ROI percentage. Undefined ROI renders as "n/a".
func ROI(roi *float64) string {
	if roi == nil {
		return StyleMuted.Render("n/a")
	}
	s := fmt.Sprintf("%.1f%%", *roi)
	if *roi < 0 {
		return StyleError.Render(s)
	}
	return StyleSuccess.Render(s)
}

// Currency formats a dollar amount.
func Currency(amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-$%.2f", -amount)
	}
	return fmt.Sprintf("$%.2f", amount)
}

// Recommendation styles an activity recommendation by its direction.
func Recommendation(r impact.Recommendation) string {
	switch r {
	case impact.RecommendIncrease, impact.RecommendReplicate:
		return StyleSuccess.Render(string(r))
	case impact.RecommendReduce:
		return StyleWarning.Render(string(r))
	case impact.RecommendDiscontinue:
		return StyleError.Render(string(r))
	default:
		return string(r)
	}
}

// Timing styles an outreach timing bucket by its urgency.
func Timing(t promoter.Timing) string {
	switch t {
	case promoter.TimingNow:
		return StyleError.Render(string(t))
	case promoter.TimingThisWeek:
		return StyleWarning.Render(string(t))
	default:
		return StyleMuted.Render(string(t))
	}
}
