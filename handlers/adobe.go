// ABOUTME: VIP Marketplace operations exposed under /api/adobe/proxy
// ABOUTME: Each operation is a forwardSpec plus optional body transform

package handlers

import (
	"net/http"
	"time"

	"github.com/markalston/vip-marketplace-proxy/services"
)

var (
	customerSpec = forwardSpec{
		name:   "customer",
		method: http.MethodGet,
		path:   "/v3/customers/{customerId}",
	}

	healthcheckSpec = forwardSpec{
		name:   "healthcheck",
		method: http.MethodGet,
		path:   "/v3/healthcheck",
	}

	flexDiscountsSpec = forwardSpec{
		name:   "flex-discounts",
		method: http.MethodGet,
		path:   "/v3/flex-discounts",
		query:  forwardQuery,
	}

	createOrderSpec = forwardSpec{
		name:    "create-order",
		method:  http.MethodPost,
		path:    "/v3/customers/{customerId}/orders",
		query:   previewQuery,
		headers: correlationHeaders,
	}

	orderSpec = forwardSpec{
		name:    "order",
		method:  http.MethodGet,
		path:    "/v3/customers/{customerId}/orders/{orderId}",
		headers: correlationHeaders,
	}

	ordersSpec = forwardSpec{
		name:   "orders",
		method: http.MethodGet,
		path:   "/v3/customers/{customerId}/orders",
		query:  forwardQuery,
	}

	priceListSpec = forwardSpec{
		name:      "pricelist",
		method:    http.MethodPost,
		path:      "/v3/pricelist",
		headers:   traceHeaders,
		transform: priceListTransform,
	}

	recommendationsSpec = forwardSpec{
		name:      "recommendations",
		method:    http.MethodPost,
		path:      "/v3/customers/{customerId}/recommendations",
		transform: recommendationsTransform,
	}

	subscriptionsSpec = forwardSpec{
		name:    "subscriptions",
		method:  http.MethodGet,
		path:    "/v3/customers/{customerId}/subscriptions",
		query:   forwardQuery,
		headers: correlationHeaders,
	}
)

func priceListTransform(in *inbound, now time.Time) (*transformed, error) {
	body, query := services.PriceListRequest(in.body, now)
	return &transformed{query: query, body: body}, nil
}

// recommendationsTransform moves customerId into the path and the
// recommendation selectors into the query string.
func recommendationsTransform(in *inbound, _ time.Time) (*transformed, error) {
	req, err := services.ParseRecommendationsRequest(in.body)
	if err != nil {
		return nil, err
	}
	return &transformed{
		params: map[string]string{"customerId": req.CustomerID},
		query:  req.Query(),
		body:   req,
	}, nil
}
