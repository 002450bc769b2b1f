package services

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var priceListNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func decodeBody(t *testing.T, s string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var m map[string]any
	require.NoError(t, dec.Decode(&m))
	return m
}

func TestPriceListRequest_DefaultsEmptyBody(t *testing.T) {
	payload, query := PriceListRequest(map[string]any{}, priceListNow)

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"region": "NA",
		"marketSegment": "COM",
		"priceListType": "STANDARD",
		"currency": "USD",
		"priceListMonth": "202610",
		"filters": {},
		"includeOfferAttributes": ["productType", "productTypeDetail", "language"]
	}`, string(data))
	assert.Empty(t, query)
}

func TestPriceListRequest_KeepsCallerValuesAndExtras(t *testing.T) {
	body := decodeBody(t, `{
		"region": "EU",
		"marketSegment": "EDU",
		"currency": "EUR",
		"priceListMonth": "202501",
		"filters": {"offerId": "65304578CA01A12"},
		"includeOfferAttributes": ["language"],
		"customField": 12345678901234567890,
		"environment": "production",
		"limit": 50,
		"offset": "100"
	}`)

	payload, query := PriceListRequest(body, priceListNow)

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"region": "EU",
		"marketSegment": "EDU",
		"priceListType": "STANDARD",
		"currency": "EUR",
		"priceListMonth": "202501",
		"filters": {"offerId": "65304578CA01A12"},
		"includeOfferAttributes": ["language"],
		"customField": 12345678901234567890
	}`, string(data))
	assert.Contains(t, string(data), "12345678901234567890", "number precision must be preserved")

	assert.Equal(t, "50", query.Get("limit"))
	assert.Equal(t, "100", query.Get("offset"))

	// Input is not mutated
	assert.Contains(t, body, "environment")
}

func TestPriceListRequest_NullAndEmptyStringAreDefaulted(t *testing.T) {
	payload, _ := PriceListRequest(decodeBody(t, `{"region": null, "currency": "", "priceListType": "PROMOTIONAL"}`), priceListNow)

	assert.Equal(t, "NA", payload["region"])
	assert.Equal(t, "USD", payload["currency"])
	assert.Equal(t, "PROMOTIONAL", payload["priceListType"])
	assert.Equal(t, "COM", payload["marketSegment"])
}
