package taxcalc

import "github.com/shopspring/decimal"

// inputs хранит снимок состояния, с которым работают формулы.
// price уже округлена до decimals, отсутствующая ставка налога равна нулю.
type inputs struct {
	price    decimal.Decimal
	rate     decimal.Decimal
	discount decimal.NullDecimal
	places   int32
}

func (in inputs) round(v decimal.Decimal) decimal.Decimal {
	return v.Round(in.places)
}

// taxShare возвращает долю налога в сумме, которая его уже включает.
func (in inputs) taxShare(incTax decimal.Decimal) decimal.Decimal {
	return in.round(incTax.Mul(in.rate).Div(one.Add(in.rate)))
}

// figures содержит шесть базовых величин, из которых выводится всё остальное.
type figures struct {
	basePrice        decimal.Decimal
	basePriceTax     decimal.Decimal
	basePriceIncTax  decimal.Decimal
	unitAmount       decimal.Decimal
	unitAmountTax    decimal.Decimal
	unitAmountIncTax decimal.Decimal
}

// incTaxFigures: цена включает налог, налог выделяется из неё.
func incTaxFigures(in inputs) figures {
	var f figures
	f.basePriceIncTax = in.price
	f.basePriceTax = in.taxShare(f.basePriceIncTax)
	f.basePrice = in.round(f.basePriceIncTax.Sub(f.basePriceTax))

	if in.discount.Valid {
		f.unitAmountIncTax = in.round(f.basePriceIncTax.Mul(one.Sub(in.discount.Decimal)))
		f.unitAmountTax = in.taxShare(f.unitAmountIncTax)
	} else {
		f.unitAmountIncTax = f.basePriceIncTax
		f.unitAmountTax = f.basePriceTax
	}
	f.unitAmount = f.unitAmountIncTax.Sub(f.unitAmountTax)
	return f
}

// withoutTaxFigures: цена без налога, налог начисляется сверху.
func withoutTaxFigures(in inputs) figures {
	var f figures
	f.basePrice = in.round(in.price)
	f.basePriceIncTax = in.round(in.price.Mul(one.Add(in.rate)))
	f.basePriceTax = in.round(f.basePriceIncTax.Sub(f.basePrice))

	if in.discount.Valid {
		f.unitAmount = in.round(f.basePrice.Mul(one.Sub(in.discount.Decimal)))
		f.unitAmountIncTax = in.round(f.unitAmount.Mul(one.Add(in.rate)))
	} else {
		f.unitAmount = f.basePrice
		f.unitAmountIncTax = f.basePriceIncTax
	}
	f.unitAmountTax = f.unitAmountIncTax.Sub(f.unitAmount)
	return f
}
