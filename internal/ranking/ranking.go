package ranking

import "github.com/shopspring/decimal"

// Threshold is one tier of a rank table. Tables are ordered descending
// by Min and searched top-down.
type Threshold struct {
	Name string
	Min  decimal.Decimal
	Rank int
}

// Result is an achieved tier with progress toward the next one.
type Result struct {
	Name     string          `json:"name"`
	NextName string          `json:"next_name,omitempty"`
	NextMin  decimal.Decimal `json:"next_min"`
	Progress int             `json:"progress"`
	Rank     int             `json:"rank"`
	HasNext  bool            `json:"has_next"`
}

// CalculateRank maps a metric value onto a descending-ordered threshold
// table. The achieved tier is the highest one whose Min <= value; below
// the lowest tier the fallback rank 0 "Pemula" applies. Progress toward
// the next tier is floor((value-min)/(nextMin-min)*100) clamped to
// [0,100]; the top tier reports 100 with no next tier. The function is
// total and deterministic.
func CalculateRank(value decimal.Decimal, table []Threshold) Result {
	current := Threshold{Rank: 0, Name: "Pemula", Min: decimal.Zero}
	next := -1

	for i, t := range table {
		if value.GreaterThanOrEqual(t.Min) {
			current = t
			next = i - 1
			break
		}
	}

	if next < 0 && len(table) > 0 && value.LessThan(table[len(table)-1].Min) {
		// Below the lowest tier: the lowest tier is the one to reach.
		next = len(table) - 1
	}

	if next < 0 {
		// Already at the top.
		return Result{
			Rank:     current.Rank,
			Name:     current.Name,
			Progress: 100,
		}
	}

	return Result{
		Rank:     current.Rank,
		Name:     current.Name,
		NextName: table[next].Name,
		NextMin:  table[next].Min,
		HasNext:  true,
		Progress: progress(value, current.Min, table[next].Min),
	}
}

func progress(value, currentMin, nextMin decimal.Decimal) int {
	span := nextMin.Sub(currentMin)
	if span.IsZero() {
		return 0
	}

	p := value.Sub(currentMin).
		Div(span).
		Mul(decimal.NewFromInt(100)).
		IntPart()

	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return int(p)
	}
}
