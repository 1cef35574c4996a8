package job

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/howardchatman/chatmansecurityandfire-sub002/internal/utils"
)

var qtyPrefix = regexp.MustCompile(`^(\d+)x\s+`)

// ScopeLine is one parsed line of a job's scope summary.
type ScopeLine struct {
	Description string
	Quantity    float64
}

// ParseScopeSummary splits a scope summary on newlines and strips the
// "<N>x " quantity prefix where present. Blank lines are skipped.
func ParseScopeSummary(summary string) []ScopeLine {
	var lines []ScopeLine
	for _, raw := range strings.Split(summary, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		qty := 1.0
		if m := qtyPrefix.FindStringSubmatch(line); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 {
				qty = float64(n)
			}
			line = strings.TrimSpace(line[len(m[0]):])
		}
		lines = append(lines, ScopeLine{Description: line, Quantity: qty})
	}
	return lines
}

// PricedScopeLine is a scope line with the job total distributed onto it.
type PricedScopeLine struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	Total       float64
}

// DistributeTotal spreads totalAmount across the parsed lines in proportion
// to quantity: each line's share is totalAmount * qty/totalQty, and its unit
// price is that share divided by the quantity. "2x Smoke Detector" plus
// "Pull Station" against 300 prices every unit at 100. Rounding happens per
// step.
func DistributeTotal(lines []ScopeLine, totalAmount float64) []PricedScopeLine {
	if len(lines) == 0 {
		return nil
	}
	totalQty := 0.0
	for _, l := range lines {
		totalQty += l.Quantity
	}
	if totalQty <= 0 {
		totalQty = float64(len(lines))
	}
	out := make([]PricedScopeLine, 0, len(lines))
	for _, l := range lines {
		share := utils.Round2(totalAmount * l.Quantity / totalQty)
		unit := share
		if l.Quantity > 0 {
			unit = utils.Round2(share / l.Quantity)
		}
		out = append(out, PricedScopeLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   unit,
			Total:       utils.Round2(unit * l.Quantity),
		})
	}
	return out
}
