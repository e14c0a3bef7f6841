// Package split divides an exact amount into parts proportional to integer
// shares.
package split

import (
	"fmt"

	apperrors "bookkeeper/internal/errors"
	"bookkeeper/internal/money"
)

// Part is one weighted item together with its allocated sum.
type Part[T any] struct {
	Item T
	Sum  money.Money
}

// ByShares splits sum among items in proportion to shareOf(item).
//
// Every item first receives sum/totalShares (truncated) times its share. The
// remaining cents are handed out one at a time over a flat list in which an
// item with share n owns n consecutive slots, in item order. Earlier items,
// and items with more shares, therefore receive the extra cents first. For a
// negative sum the remainder is negative and a cent is taken away per slot.
//
// The parts always add up to exactly sum.
func ByShares[T any](sum money.Money, items []T, shareOf func(T) int) ([]Part[T], error) {
	var totalShares int64
	for _, item := range items {
		share := shareOf(item)
		if share < 0 {
			return nil, apperrors.InvalidInput("shares", share, "shares must not be negative")
		}
		totalShares += int64(share)
	}
	if totalShares == 0 {
		return nil, apperrors.InvalidInput("shares", totalShares, "total shares must be positive")
	}

	part := sum.Divide(totalShares)
	parts := make([]Part[T], len(items))
	allocated := money.Zero
	for i, item := range items {
		parts[i] = Part[T]{Item: item, Sum: part.Multiply(int64(shareOf(item)))}
		allocated = allocated.Plus(parts[i].Sum)
	}

	remainder := sum.Minus(allocated)
	step := money.Cent
	if remainder.Sign() < 0 {
		step = money.Cent.Negate()
	}
	cents := remainder.Abs().Cents()
	for i := 0; i < len(parts) && cents > 0; i++ {
		slots := min(int64(shareOf(parts[i].Item)), cents)
		parts[i].Sum = parts[i].Sum.Plus(step.Multiply(slots))
		cents -= slots
	}

	total := money.Zero
	for _, p := range parts {
		total = total.Plus(p.Sum)
	}
	if !total.Equals(sum) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer,
			fmt.Errorf("split of %s produced %s", sum, total))
	}
	return parts, nil
}

// Sums returns only the allocated amounts of parts, in order.
func Sums[T any](parts []Part[T]) []money.Money {
	out := make([]money.Money, len(parts))
	for i, p := range parts {
		out[i] = p.Sum
	}
	return out
}
