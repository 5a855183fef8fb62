// Package planner decides how to pay for a chapter out of a mixed-currency
// balance, in the fixed priority order bonus, then product, then premium,
// then point. It never talks to a vendor; Plan is a pure function so the
// batch loop can call it to preview a purchase before committing it.
package planner

import (
	"crypto/rand"
	"math/big"
)

const randomTokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const randomTokenLength = 16

// RandomToken generates a 16-character lowercase alphanumeric string,
// used by vendors that require a client-generated idempotency token on
// purchase requests.
func RandomToken() string {
	out := make([]byte, randomTokenLength)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(randomTokenAlphabet))))
		if err != nil {
			panic("planner: random source failed: " + err.Error())
		}
		out[i] = randomTokenAlphabet[n.Int64()]
	}
	return string(out)
}

// Balance is an account's purse, broken into the four currency pools a
// vendor may debit from, checked in this exact order.
type Balance struct {
	Bonus   uint64
	Product uint64
	Premium uint64
	Point   uint64
}

// Total sums every pool. Used for the price > Total infeasibility check
// and by tests asserting conservation.
func (b Balance) Total() uint64 {
	return b.Bonus + b.Product + b.Premium + b.Point
}

// Debit subtracts amount across the pools in priority order and returns
// the resulting balance. The caller must already know amount <= b.Total();
// Debit does not itself check feasibility.
func (b Balance) Debit(amount uint64) Balance {
	take := func(pool *uint64) {
		if amount == 0 {
			return
		}
		if *pool >= amount {
			*pool -= amount
			amount = 0
			return
		}
		amount -= *pool
		*pool = 0
	}

	take(&b.Bonus)
	take(&b.Product)
	take(&b.Premium)
	take(&b.Point)

	return b
}

// Item is the pricing/eligibility shape of one chapter, vendor-agnostic.
type Item struct {
	ID          string
	Price       uint64
	RentalTerm  string // non-empty means a rental chapter, free regardless of price
	IsFreeDaily bool
}

// Plan is the outcome of planning a single Item's purchase: whether it
// needs a balance debit at all, and the balance afterward.
type Plan struct {
	ItemID       string
	Purchasable  bool
	RequiresDebit bool
	RentalTerm   string
	IsFreeDaily  bool
	Remaining    Balance
}

// PlanItem decides how to pay for item out of balance.
//
// Short-circuits, checked before any balance math, matching the vendor's
// own free-chapter rules: a rental-term chapter, a free-daily chapter, and
// a zero-priced chapter are all purchasable with no balance debit. A
// priced chapter whose price exceeds the balance's total is not
// purchasable. Otherwise the price is debited bonus-first.
func PlanItem(item Item, balance Balance) Plan {
	switch {
	case item.RentalTerm != "":
		return Plan{ItemID: item.ID, Purchasable: true, RentalTerm: item.RentalTerm, IsFreeDaily: item.IsFreeDaily, Remaining: balance}
	case item.IsFreeDaily:
		return Plan{ItemID: item.ID, Purchasable: true, IsFreeDaily: true, Remaining: balance}
	case item.Price == 0:
		return Plan{ItemID: item.ID, Purchasable: true, Remaining: balance}
	case item.Price > balance.Total():
		return Plan{ItemID: item.ID, Purchasable: false, Remaining: balance}
	default:
		return Plan{
			ItemID:        item.ID,
			Purchasable:   true,
			RequiresDebit: true,
			Remaining:     balance.Debit(item.Price),
		}
	}
}

// PlanBatch plans a sequence of items against a single running balance:
// each item's plan sees the balance left over by the previous one. An item
// that turns out not to be purchasable does not debit anything, and
// planning continues with the unchanged balance for the rest of the
// batch.
func PlanBatch(items []Item, balance Balance) []Plan {
	plans := make([]Plan, 0, len(items))

	for _, item := range items {
		plan := PlanItem(item, balance)
		plans = append(plans, plan)
		balance = plan.Remaining
	}

	return plans
}
