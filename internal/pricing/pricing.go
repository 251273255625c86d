// Package pricing holds the storefront's pricing rules as one named policy
// rather than literals scattered through the workflow.
package pricing

import (
	"math"

	"github.com/nlduyvu/vebus-go/internal/domain"
)

// Policy is a versionable set of pricing rules. Amounts are VND.
type Policy struct {
	// RoundTripRate is the discount applied to a round-trip invoice total.
	RoundTripRate float64
	// OnlineRate is the flat discount for online booking, applied on top of
	// any promotion discount.
	OnlineRate float64
}

// Default is the policy currently in force: 10% round-trip, 2% online.
func Default() Policy {
	return Policy{
		RoundTripRate: 0.10,
		OnlineRate:    0.02,
	}
}

// Preview is the pairing-stage price preview for a selected trip pair. It is
// display only; tickets are priced per seat at each leg's base price and the
// round-trip discount is realized at invoice time.
type Preview struct {
	Subtotal int64
	Discount int64
	Total    int64
}

// PairPreview prices an outbound/return pair of base fares.
func (p Policy) PairPreview(outboundBase, returnBase int64) Preview {
	subtotal := outboundBase + returnBase
	discount := round(float64(subtotal) * p.RoundTripRate)

	return Preview{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}
}

// RoundTripDiscount is the invoice-time round-trip discount on a subtotal.
func (p Policy) RoundTripDiscount(subtotal int64) int64 {
	return round(float64(subtotal) * p.RoundTripRate)
}

// OnlineDiscount is the flat online-payment discount on a price.
func (p Policy) OnlineDiscount(price int64) int64 {
	return round(float64(price) * p.OnlineRate)
}

// PromotionDiscount computes a promotion's discount against a price.
// Percentage discounts are capped at the promotion's MaxDiscount when set;
// fixed-amount discounts never exceed the price itself.
func (p Policy) PromotionDiscount(price int64, promo *domain.Promotion) int64 {
	if promo == nil || price < promo.MinAmount {
		return 0
	}

	switch promo.DiscountType {
	case domain.DiscountPercentage:
		d := round(float64(price) * float64(promo.DiscountValue) / 100)
		if promo.MaxDiscount > 0 && d > promo.MaxDiscount {
			d = promo.MaxDiscount
		}
		return d
	case domain.DiscountAmount:
		if promo.DiscountValue > price {
			return price
		}
		return promo.DiscountValue
	default:
		return 0
	}
}

// Clamp keeps a discounted total from going negative.
func Clamp(total int64) int64 {
	if total < 0 {
		return 0
	}
	return total
}

func round(v float64) int64 {
	return int64(math.Round(v))
}
