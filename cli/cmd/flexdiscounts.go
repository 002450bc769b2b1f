// ABOUTME: Flex-discounts command for vipctl
// ABOUTME: Queries flexible discounts by market segment, country and offer

package cmd

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

type flexDiscountFilter struct {
	MarketSegment string
	Country       string
	OfferIDs      []string
}

var flexFilter flexDiscountFilter

var flexDiscountsCmd = &cobra.Command{
	Use:   "flex-discounts",
	Short: "List flexible discounts",
	Args:  cobra.NoArgs,
	Run: runWithSignals(func(ctx context.Context, w io.Writer, _ []string) int {
		return runFlexDiscounts(ctx, w, flexFilter)
	}),
}

func init() {
	flexDiscountsCmd.Flags().StringVar(&flexFilter.MarketSegment, "market-segment", "COM", "Market segment (COM, EDU, GOV)")
	flexDiscountsCmd.Flags().StringVar(&flexFilter.Country, "country", "", "Two-letter country code")
	flexDiscountsCmd.Flags().StringSliceVar(&flexFilter.OfferIDs, "offer-ids", nil, "Comma-separated offer IDs")
	rootCmd.AddCommand(flexDiscountsCmd)
}

func (f flexDiscountFilter) query() url.Values {
	q := url.Values{}
	if f.MarketSegment != "" {
		q.Set("market-segment", strings.ToUpper(f.MarketSegment))
	}
	if f.Country != "" {
		q.Set("country", strings.ToUpper(f.Country))
	}
	if len(f.OfferIDs) > 0 {
		q.Set("offer-ids", strings.Join(f.OfferIDs, ","))
	}
	return q
}

func runFlexDiscounts(ctx context.Context, w io.Writer, f flexDiscountFilter) int {
	data, err := newClient().FlexDiscounts(ctx, f.query())
	if err != nil {
		return reportError(w, err)
	}
	writeRaw(w, data)
	return exitOK
}
