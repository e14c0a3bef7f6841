// Package division derives and validates the two-legged division of an
// expense among group members.
//
// Every expense type has a given leg, which the caller may supply, and a
// derived leg, which is always the pointwise negation of the given one:
//
//	expense   cost       (-sum)  benefit    (+sum)
//	income    income     (+sum)  split      (-sum)
//	transfer  transferor (-sum)  transferee (+sum)
//
// A complete division therefore always sums to zero.
package division

import (
	"fmt"

	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/models"
	"bookkeeper/internal/money"
	"bookkeeper/internal/split"
)

// Input is the part of an expense the division is computed from.
type Input struct {
	Type     models.ExpenseType
	Sum      money.Money
	UserID   string
	Division []models.ExpenseDivisionItem
}

// LegPair names the given and derived leg of an expense type.
type LegPair struct {
	Given   models.ExpenseDivisionType
	Derived models.ExpenseDivisionType
	// GivenNegative is set when the given leg carries the negated sum.
	GivenNegative bool
}

// Legs returns the leg pair of an expense type.
func Legs(t models.ExpenseType) (LegPair, error) {
	switch t {
	case models.ExpenseTypeExpense:
		return LegPair{Given: models.DivisionTypeCost, Derived: models.DivisionTypeBenefit, GivenNegative: true}, nil
	case models.ExpenseTypeIncome:
		return LegPair{Given: models.DivisionTypeIncome, Derived: models.DivisionTypeSplit}, nil
	case models.ExpenseTypeTransfer:
		return LegPair{Given: models.DivisionTypeTransferor, Derived: models.DivisionTypeTransferee, GivenNegative: true}, nil
	}
	return LegPair{}, apperrors.InvalidInput("type", t, "one of expense, income, transfer")
}

// Expected returns the signed total the given leg must add up to.
func (p LegPair) Expected(sum money.Money) money.Money {
	if p.GivenNegative {
		return sum.Negate()
	}
	return sum
}

// Determine returns the complete division of an expense.
//
// When the input contains items of the given leg they are validated against
// the signed total and kept as they are. Otherwise the given leg is derived:
// income goes entirely to the recording user, and expenses and transfers are
// split between the users of source by their shares. Items of the derived leg
// in the input are ignored; that leg is always recomputed as the negation of
// the given one.
func Determine(in Input, source *models.Source) ([]models.ExpenseDivisionItem, error) {
	legs, err := Legs(in.Type)
	if err != nil {
		return nil, err
	}
	if err := checkTypes(in.Type, legs, in.Division, legs.Given); err != nil {
		return nil, err
	}

	given := Filter(in.Division, legs.Given)
	if len(given) > 0 {
		if err := checkLeg(legs.Given, given, legs.Expected(in.Sum)); err != nil {
			return nil, err
		}
	} else {
		given, err = derive(in, legs, source)
		if err != nil {
			return nil, err
		}
	}

	result := make([]models.ExpenseDivisionItem, 0, len(given)*2)
	for _, item := range given {
		result = append(result, models.ExpenseDivisionItem{UserID: item.UserID, Type: legs.Given, Sum: item.Sum})
	}
	return append(result, Negate(given, legs.Derived)...), nil
}

func derive(in Input, legs LegPair, source *models.Source) ([]models.ExpenseDivisionItem, error) {
	switch in.Type {
	case models.ExpenseTypeIncome:
		if in.UserID == "" {
			return nil, apperrors.InvalidInput("user_id", in.UserID, "income needs the receiving user")
		}
		return []models.ExpenseDivisionItem{{UserID: in.UserID, Type: legs.Given, Sum: in.Sum}}, nil
	case models.ExpenseTypeExpense, models.ExpenseTypeTransfer:
		if source == nil {
			return nil, apperrors.InvalidInput("source", nil, "a source is required to derive the division")
		}
		parts, err := split.ByShares(in.Sum, source.Users, func(u models.SourceUser) int { return u.Share })
		if err != nil {
			return nil, err
		}
		items := make([]models.ExpenseDivisionItem, len(parts))
		for i, p := range parts {
			items[i] = models.ExpenseDivisionItem{UserID: p.Item.UserID, Type: legs.Given, Sum: p.Sum.Negate()}
		}
		return items, nil
	}
	return nil, apperrors.InvalidInput("type", in.Type, "one of expense, income, transfer")
}

// checkTypes rejects items outside the leg pair of t, and users listed more
// than once within one of the unique legs.
func checkTypes(t models.ExpenseType, legs LegPair, items []models.ExpenseDivisionItem, unique ...models.ExpenseDivisionType) error {
	seen := make(map[models.ExpenseDivisionType]map[string]bool, len(unique))
	for _, leg := range unique {
		seen[leg] = make(map[string]bool)
	}
	for _, item := range items {
		if item.Type != legs.Given && item.Type != legs.Derived {
			return apperrors.InvalidInput("division", item.Type,
				fmt.Sprintf("%s accepts only %s and %s items", t, legs.Given, legs.Derived))
		}
		users, ok := seen[item.Type]
		if !ok {
			continue
		}
		if users[item.UserID] {
			return apperrors.InvalidInput("division", item.UserID,
				fmt.Sprintf("user may appear only once in %s", item.Type))
		}
		users[item.UserID] = true
	}
	return nil
}

func checkLeg(leg models.ExpenseDivisionType, items []models.ExpenseDivisionItem, expected money.Money) error {
	actual := SumOf(items)
	if !actual.Equals(expected) {
		return apperrors.InvalidInput(string(leg), actual.String(),
			fmt.Sprintf("sum of %s must be %s", leg, expected))
	}
	return nil
}

// Validate checks that a stored division is complete: only the two legs of
// the expense type occur, the given leg adds up to the signed sum and the
// derived leg to its negation.
func Validate(t models.ExpenseType, sum money.Money, items []models.ExpenseDivisionItem) error {
	legs, err := Legs(t)
	if err != nil {
		return err
	}
	if err := checkTypes(t, legs, items, legs.Given, legs.Derived); err != nil {
		return err
	}
	expected := legs.Expected(sum)
	if err := checkLeg(legs.Given, Filter(items, legs.Given), expected); err != nil {
		return err
	}
	return checkLeg(legs.Derived, Filter(items, legs.Derived), expected.Negate())
}

// Negate returns items with every sum negated and the type set to t.
func Negate(items []models.ExpenseDivisionItem, t models.ExpenseDivisionType) []models.ExpenseDivisionItem {
	out := make([]models.ExpenseDivisionItem, len(items))
	for i, item := range items {
		out[i] = models.ExpenseDivisionItem{UserID: item.UserID, Type: t, Sum: item.Sum.Negate()}
	}
	return out
}

// Filter returns the items of the given type, in order.
func Filter(items []models.ExpenseDivisionItem, t models.ExpenseDivisionType) []models.ExpenseDivisionItem {
	var out []models.ExpenseDivisionItem
	for _, item := range items {
		if item.Type == t {
			out = append(out, item)
		}
	}
	return out
}

// SumOf adds up the sums of items.
func SumOf(items []models.ExpenseDivisionItem) money.Money {
	total := money.Zero
	for _, item := range items {
		total = total.Plus(item.Sum)
	}
	return total
}

// Copy returns items detached from any expense, ready to be inserted for
// another one.
func Copy(items []models.ExpenseDivisionItem, expenseID string) []models.ExpenseDivisionItem {
	out := make([]models.ExpenseDivisionItem, len(items))
	for i, item := range items {
		out[i] = models.ExpenseDivisionItem{ExpenseID: expenseID, UserID: item.UserID, Type: item.Type, Sum: item.Sum}
	}
	return out
}
