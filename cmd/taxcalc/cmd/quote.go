package cmd

import (
	"encoding/json"
	"fmt"

	"tax-calculator/internal/config"
	"tax-calculator/internal/models"
	"tax-calculator/internal/services"

	"github.com/spf13/cobra"
)

// quoteFlags связывает флаги с полями запроса.
// Незаданные флаги остаются nil, и сервис подставляет значения по умолчанию.
type quoteFlags struct {
	reference   string
	price       string
	taxRate     string
	taxIncluded bool
	discount    string
	quantity    string
	decimals    int32
	convertTo   string
}

func (f *quoteFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.reference, "reference", "", "Caller line-item reference")
	fl.StringVar(&f.price, "price", "", "Unit price")
	fl.StringVar(&f.taxRate, "tax-rate", "", "Tax rate as a fraction in [0,1], e.g. 0.21")
	fl.BoolVar(&f.taxIncluded, "tax-included", false, "Price already includes tax")
	fl.StringVar(&f.discount, "discount", "", "Percent discount as a fraction in [0,1]")
	fl.StringVar(&f.quantity, "quantity", "", "Quantity (> 0)")
	fl.Int32Var(&f.decimals, "decimals", 2, "Rounding precision")
	fl.StringVar(&f.convertTo, "convert-to", "", "Switch strategy after setting inputs: inc-tax or without-tax")
	_ = cmd.MarkFlagRequired("price")
}

func (f *quoteFlags) request(cmd *cobra.Command) *models.QuoteRequest {
	req := &models.QuoteRequest{
		Reference: f.reference,
		Price:     f.price,
		ConvertTo: f.convertTo,
	}
	if f.taxRate != "" {
		req.TaxRate = f.taxRate
	}
	if f.discount != "" {
		req.PercentDiscount = f.discount
	}
	if f.quantity != "" {
		req.Quantity = f.quantity
	}
	if cmd.Flags().Changed("tax-included") {
		req.TaxIncluded = f.taxIncluded
	}
	if cmd.Flags().Changed("decimals") {
		req.Decimals = f.decimals
	}
	return req
}

func newQuoteCmd(verbose *bool) *cobra.Command {
	flags := &quoteFlags{}
	var compact bool

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Calculate one line item and print the breakdown as JSON",
		Example: `  taxcalc quote --price 121 --tax-rate 0.21 --tax-included
  taxcalc quote --price 100 --tax-rate 0.21 --discount 0.1 --quantity 3 --convert-to inc-tax`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := cliLogger(cfg, *verbose, cmd.ErrOrStderr())

			svc, err := services.NewQuoteService(log, nil, nil, &cfg.Calculator, 0)
			if err != nil {
				return err
			}

			quote, err := svc.Calculate(cmd.Context(), flags.request(cmd))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(quote); err != nil {
				return fmt.Errorf("failed to encode quote: %w", err)
			}
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&compact, "compact", false, "Print single-line JSON")
	return cmd
}
