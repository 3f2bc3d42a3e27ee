// Package taxcalc рассчитывает базовую цену, налог, скидку, суммы за единицу и итог
// для одной позиции.
//
// Цена может включать налог (inc-tax) или нет (without-tax). Client держит активную
// стратегию и позволяет сменить её с переносом введённых значений:
//
//	c := taxcalc.NewClient(taxcalc.NewIncTax(decimal.NewFromInt(121))).
//		SetTaxRate(decimal.NewNullDecimal(decimal.RequireFromString("0.21"))).
//		SetQuantity(decimal.NewFromInt(2))
//	if err := c.Err(); err != nil {
//		return err
//	}
//	total := c.AmountIncTax() // 242
package taxcalc
