// ABOUTME: Price list request shaping for POST /v3/pricelist
// ABOUTME: Applies server-side defaults and moves paging fields to the query string

package services

import (
	"net/url"
	"time"
)

// Price list defaults applied when the caller omits a field.
const (
	DefaultRegion        = "NA"
	DefaultMarketSegment = "COM"
	DefaultPriceListType = "STANDARD"
	DefaultCurrency      = "USD"
)

// DefaultOfferAttributes is used when includeOfferAttributes is absent.
var DefaultOfferAttributes = []string{"productType", "productTypeDetail", "language"}

// PriceListRequest normalizes an inbound price list body. environment, limit
// and offset are removed from the body; limit and offset become query
// parameters. Every other field is kept as sent. body is not modified.
func PriceListRequest(body map[string]any, now time.Time) (map[string]any, url.Values) {
	payload := make(map[string]any, len(body)+7)
	for k, v := range body {
		payload[k] = v
	}

	query := url.Values{}
	for _, key := range []string{"limit", "offset"} {
		if v, ok := payload[key]; ok {
			if s := scalarString(v); s != "" {
				query.Set(key, s)
			}
			delete(payload, key)
		}
	}
	delete(payload, "environment")

	setDefault(payload, "region", DefaultRegion)
	setDefault(payload, "marketSegment", DefaultMarketSegment)
	setDefault(payload, "priceListType", DefaultPriceListType)
	setDefault(payload, "currency", DefaultCurrency)
	setDefault(payload, "priceListMonth", now.UTC().Format("200601"))
	setDefault(payload, "filters", map[string]any{})
	setDefault(payload, "includeOfferAttributes", append([]string(nil), DefaultOfferAttributes...))

	return payload, query
}

// setDefault fills key when it is missing, null or an empty string.
func setDefault(m map[string]any, key string, value any) {
	v, ok := m[key]
	if !ok || v == nil {
		m[key] = value
		return
	}
	if s, isString := v.(string); isString && s == "" {
		m[key] = value
	}
}
