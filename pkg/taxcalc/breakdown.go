package taxcalc

import "github.com/shopspring/decimal"

// Breakdown содержит все величины фасада одним значением.
// Поля, которые фасад не вычисляет без ставки налога или скидки, равны null.
type Breakdown struct {
	Strategy        string              `json:"strategy"`
	TaxIncluded     bool                `json:"tax_included"`
	Price           decimal.Decimal     `json:"price"`
	TaxRate         decimal.NullDecimal `json:"tax_rate"`
	PercentDiscount decimal.NullDecimal `json:"percent_discount"`
	Quantity        decimal.Decimal     `json:"quantity"`
	Decimals        int32               `json:"decimals"`

	BasePrice       decimal.Decimal `json:"base_price"`
	BasePriceTax    decimal.Decimal `json:"base_price_tax"`
	BasePriceIncTax decimal.Decimal `json:"base_price_inc_tax"`

	UnitAmount                      decimal.Decimal     `json:"unit_amount"`
	UnitAmountDiscount              decimal.NullDecimal `json:"unit_amount_discount"`
	UnitAmountWithoutDiscount       decimal.Decimal     `json:"unit_amount_without_discount"`
	UnitAmountTax                   decimal.NullDecimal `json:"unit_amount_tax"`
	UnitAmountTaxDiscount           decimal.NullDecimal `json:"unit_amount_tax_discount"`
	UnitAmountTaxWithoutDiscount    decimal.Decimal     `json:"unit_amount_tax_without_discount"`
	UnitAmountIncTax                decimal.Decimal     `json:"unit_amount_inc_tax"`
	UnitAmountIncTaxDiscount        decimal.NullDecimal `json:"unit_amount_inc_tax_discount"`
	UnitAmountIncTaxWithoutDiscount decimal.Decimal     `json:"unit_amount_inc_tax_without_discount"`

	Amount                      decimal.Decimal     `json:"amount"`
	AmountDiscount              decimal.NullDecimal `json:"amount_discount"`
	AmountWithoutDiscount       decimal.Decimal     `json:"amount_without_discount"`
	AmountTax                   decimal.NullDecimal `json:"amount_tax"`
	AmountTaxDiscount           decimal.NullDecimal `json:"amount_tax_discount"`
	AmountTaxWithoutDiscount    decimal.Decimal     `json:"amount_tax_without_discount"`
	AmountIncTax                decimal.Decimal     `json:"amount_inc_tax"`
	AmountIncTaxDiscount        decimal.NullDecimal `json:"amount_inc_tax_discount"`
	AmountIncTaxWithoutDiscount decimal.Decimal     `json:"amount_inc_tax_without_discount"`
}

// Breakdown собирает снимок всех величин активной стратегии.
func (c *Client) Breakdown() Breakdown {
	return Breakdown{
		Strategy:        c.StrategyName(),
		TaxIncluded:     c.TaxIncluded(),
		Price:           c.Price(),
		TaxRate:         c.TaxRate(),
		PercentDiscount: c.PercentDiscount(false),
		Quantity:        c.Quantity(),
		Decimals:        c.Decimals(),

		BasePrice:       c.BasePrice(),
		BasePriceTax:    c.BasePriceTax(),
		BasePriceIncTax: c.BasePriceIncTax(),

		UnitAmount:                      c.UnitAmount(),
		UnitAmountDiscount:              c.UnitAmountDiscount(),
		UnitAmountWithoutDiscount:       c.UnitAmountWithoutDiscount(),
		UnitAmountTax:                   c.UnitAmountTax(),
		UnitAmountTaxDiscount:           c.UnitAmountTaxDiscount(),
		UnitAmountTaxWithoutDiscount:    c.UnitAmountTaxWithoutDiscount(),
		UnitAmountIncTax:                c.UnitAmountIncTax(),
		UnitAmountIncTaxDiscount:        c.UnitAmountIncTaxDiscount(),
		UnitAmountIncTaxWithoutDiscount: c.UnitAmountIncTaxWithoutDiscount(),

		Amount:                      c.Amount(),
		AmountDiscount:              c.AmountDiscount(),
		AmountWithoutDiscount:       c.AmountWithoutDiscount(),
		AmountTax:                   c.AmountTax(),
		AmountTaxDiscount:           c.AmountTaxDiscount(),
		AmountTaxWithoutDiscount:    c.AmountTaxWithoutDiscount(),
		AmountIncTax:                c.AmountIncTax(),
		AmountIncTaxDiscount:        c.AmountIncTaxDiscount(),
		AmountIncTaxWithoutDiscount: c.AmountIncTaxWithoutDiscount(),
	}
}
