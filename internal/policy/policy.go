// Package policy holds the static leave-policy configuration. Policies are
// not persisted per employee; balances reference them by name.
package policy

import "github.com/shopspring/decimal"

type AccrualFrequency string

const (
	FreqMonthly   AccrualFrequency = "Monthly"
	FreqQuarterly AccrualFrequency = "Quarterly"
)

type LeavePolicy struct {
	Name      string
	Accrual   decimal.Decimal  // units credited per accrual period
	Frequency AccrualFrequency
	// Sandwich counts intervening holidays/Sundays toward the debit.
	Sandwich       bool
	Cap            *decimal.Decimal // balance never accrues past this
	MaxApplyAtOnce *decimal.Decimal // longest single request, in day units
}

func capOf(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

var registry = map[string]LeavePolicy{
	"Casual Leave": {
		Name:           "Casual Leave",
		Accrual:        decimal.NewFromInt(1),
		Frequency:      FreqMonthly,
		Sandwich:       false,
		Cap:            capOf("12"),
		MaxApplyAtOnce: capOf("3"),
	},
	"Sick Leave": {
		Name:      "Sick Leave",
		Accrual:   decimal.RequireFromString("0.5"),
		Frequency: FreqMonthly,
		Sandwich:  false,
		Cap:       capOf("6"),
	},
	"Earned Leave": {
		Name:      "Earned Leave",
		Accrual:   decimal.RequireFromString("1.5"),
		Frequency: FreqQuarterly,
		Sandwich:  true,
	},
}

func Get(name string) (LeavePolicy, bool) {
	p, ok := registry[name]
	return p, ok
}

func All() []LeavePolicy {
	out := make([]LeavePolicy, 0, len(registry))
	for _, name := range []string{"Casual Leave", "Sick Leave", "Earned Leave"} {
		out = append(out, registry[name])
	}
	return out
}
