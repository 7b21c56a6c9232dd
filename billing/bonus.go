/*
bonus.go - The tiered bonus computation

PURPOSE:
  Pure conversion of an aggregated sales total into {bonus, remainder,
  tierCount}. This is the only place the tier constants live.

THE TIER MODEL:
  Sales accumulate in half-tiers of 12,500 currency units. Two half-tiers
  (25,000) form one "box" worth a fixed 1,800 bonus. The floored multiple
  of 12,500 is what earns; whatever is left above it is the remainder and
  carries no bonus. A lone half-tier therefore yields a fractional tier
  count of 0.5 and half a box's bonus.

EXAMPLES:
  total 30,000 -> floored base 25,000 -> tiers 1    bonus 1,800  remainder 5,000
  total 12,500 -> floored base 12,500 -> tiers 0.5  bonus   900  remainder 0
  total  9,000 -> floored base      0 -> tiers 0    bonus     0  remainder 9,000

SEE ALSO:
  - aggregate.go: produces the totals fed into ComputeBonus
*/
package billing

import "github.com/shopspring/decimal"

// Tier constants, in currency units.
var (
	// halfTierSize is the smallest sales block that earns bonus.
	halfTierSize = decimal.NewFromInt(12500)

	// boxSize is two half-tiers; one box earns boxBonus.
	boxSize = decimal.NewFromInt(25000)

	// boxBonus is the fixed bonus per full box.
	boxBonus = decimal.NewFromInt(1800)
)

// ComputeBonus converts an aggregated sales total into its bonus
// breakdown. Pure: no I/O, same input always yields the same output.
func ComputeBonus(totalAmount decimal.Decimal) BonusBreakdown {
	zero := BonusBreakdown{
		Bonus:     decimal.Zero,
		Remainder: decimal.Zero,
		TierCount: decimal.Zero,
	}
	if totalAmount.IsZero() {
		return zero
	}

	// Floor to the nearest multiple of the half-tier. For exact multiples
	// the floored base equals the total itself and the remainder is zero,
	// which collapses that case into the general formula.
	flooredBase := totalAmount.Div(halfTierSize).Floor().Mul(halfTierSize)

	tierCount := flooredBase.Div(boxSize)
	return BonusBreakdown{
		Bonus:     tierCount.Mul(boxBonus),
		Remainder: totalAmount.Sub(flooredBase),
		TierCount: tierCount,
	}
}
