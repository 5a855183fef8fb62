package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanItemRentalTermIsFree(t *testing.T) {
	balance := Balance{Bonus: 0, Product: 0, Premium: 0, Point: 0}
	plan := PlanItem(Item{ID: "ch1", Price: 500, RentalTerm: "24h"}, balance)

	assert.True(t, plan.Purchasable)
	assert.False(t, plan.RequiresDebit)
	assert.Equal(t, balance, plan.Remaining)
}

func TestPlanItemFreeDailyIsFree(t *testing.T) {
	balance := Balance{Point: 10}
	plan := PlanItem(Item{ID: "ch1", Price: 500, IsFreeDaily: true}, balance)

	assert.True(t, plan.Purchasable)
	assert.False(t, plan.RequiresDebit)
	assert.Equal(t, balance, plan.Remaining)
}

func TestPlanItemZeroPriceIsFree(t *testing.T) {
	balance := Balance{Point: 10}
	plan := PlanItem(Item{ID: "ch1", Price: 0}, balance)

	assert.True(t, plan.Purchasable)
	assert.False(t, plan.RequiresDebit)
}

func TestPlanItemInsufficientBalance(t *testing.T) {
	balance := Balance{Bonus: 10, Product: 10, Premium: 10, Point: 10}
	plan := PlanItem(Item{ID: "ch1", Price: 1000}, balance)

	assert.False(t, plan.Purchasable)
	assert.Equal(t, balance, plan.Remaining, "an infeasible plan must not touch the balance")
}

func TestPlanItemPriorityOrder(t *testing.T) {
	cases := []struct {
		name    string
		balance Balance
		price   uint64
		want    Balance
	}{
		{
			name:    "bonus alone covers it",
			balance: Balance{Bonus: 100, Product: 100, Premium: 100, Point: 100},
			price:   40,
			want:    Balance{Bonus: 60, Product: 100, Premium: 100, Point: 100},
		},
		{
			name:    "bonus exhausted, product covers remainder",
			balance: Balance{Bonus: 10, Product: 100, Premium: 100, Point: 100},
			price:   40,
			want:    Balance{Bonus: 0, Product: 70, Premium: 100, Point: 100},
		},
		{
			name:    "bonus and product exhausted, premium covers remainder",
			balance: Balance{Bonus: 5, Product: 5, Premium: 100, Point: 100},
			price:   40,
			want:    Balance{Bonus: 0, Product: 0, Premium: 70, Point: 100},
		},
		{
			name:    "only point left",
			balance: Balance{Bonus: 0, Product: 0, Premium: 0, Point: 100},
			price:   40,
			want:    Balance{Bonus: 0, Product: 0, Premium: 0, Point: 60},
		},
		{
			name:    "exact total spends everything",
			balance: Balance{Bonus: 10, Product: 10, Premium: 10, Point: 10},
			price:   40,
			want:    Balance{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := PlanItem(Item{ID: "ch1", Price: tc.price}, tc.balance)
			require.True(t, plan.Purchasable)
			assert.True(t, plan.RequiresDebit)
			assert.Equal(t, tc.want, plan.Remaining)
		})
	}
}

func TestPlanItemConservesTotal(t *testing.T) {
	balance := Balance{Bonus: 17, Product: 23, Premium: 31, Point: 41}
	plan := PlanItem(Item{ID: "ch1", Price: 50}, balance)

	require.True(t, plan.Purchasable)
	assert.Equal(t, balance.Total()-50, plan.Remaining.Total())
}

func TestPlanBatchChainsBalanceAcrossItems(t *testing.T) {
	balance := Balance{Bonus: 100}
	items := []Item{
		{ID: "ch1", Price: 40},
		{ID: "ch2", Price: 40},
		{ID: "ch3", Price: 40},
	}

	plans := PlanBatch(items, balance)

	require.Len(t, plans, 3)
	assert.True(t, plans[0].Purchasable)
	assert.True(t, plans[1].Purchasable)
	assert.False(t, plans[2].Purchasable, "only 20 left after two 40-cost items, third must fail")
	assert.Equal(t, uint64(20), plans[1].Remaining.Total())
}

func TestRandomTokenShapeAndUniqueness(t *testing.T) {
	a := RandomToken()
	b := RandomToken()

	assert.Len(t, a, randomTokenLength)
	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.Contains(t, randomTokenAlphabet, string(r))
	}
}
