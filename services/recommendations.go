// ABOUTME: Recommendations request shaping for /v3/customers/{id}/recommendations
// ABOUTME: Builds the upstream query directly from body fields

package services

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// RecommendationsRequest is the inbound body of POST /v3/recommendations.
type RecommendationsRequest struct {
	CustomerID            string          `json:"customerId"`
	Country               string          `json:"country,omitempty"`
	Language              string          `json:"language,omitempty"`
	RecommendationContext string          `json:"recommendationContext,omitempty"`
	Offers                json.RawMessage `json:"offers,omitempty"`
}

// ParseRecommendationsRequest extracts and validates the recommendation
// fields from a decoded body.
func ParseRecommendationsRequest(body map[string]any) (*RecommendationsRequest, error) {
	req := &RecommendationsRequest{
		CustomerID:            scalarString(body["customerId"]),
		Country:               scalarString(body["country"]),
		Language:              scalarString(body["language"]),
		RecommendationContext: scalarString(body["recommendationContext"]),
	}
	if req.CustomerID == "" {
		return nil, Invalid("customerId is required")
	}
	if offers, ok := body["offers"]; ok && offers != nil {
		data, err := json.Marshal(offers)
		if err != nil {
			return nil, Invalid("offers must be valid JSON: %v", err)
		}
		req.Offers = data
	}
	return req, nil
}

// Query returns the upstream query string. customerId travels in the path.
func (r *RecommendationsRequest) Query() url.Values {
	q := url.Values{}
	if r.Country != "" {
		q.Set("country", r.Country)
	}
	if r.Language != "" {
		q.Set("language", r.Language)
	}
	if r.RecommendationContext != "" {
		q.Set("recommendation-context", r.RecommendationContext)
	}
	return q
}

// scalarString renders strings and JSON numbers as text; other types yield "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
