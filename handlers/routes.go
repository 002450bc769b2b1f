// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import "net/http"

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // ServeMux path, may contain {wildcards}
	Handler http.HandlerFunc // Handler function
}

// Pattern is the ServeMux registration pattern, e.g. "GET /api/status".
func (r Route) Pattern() string {
	return r.Method + " " + r.Path
}

const adobeProxyPrefix = "/api/adobe/proxy"

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Status & Documentation
		{Method: http.MethodGet, Path: "/api/status", Handler: h.Status},
		{Method: http.MethodGet, Path: "/api/openapi.yaml", Handler: h.OpenAPISpec},

		// devs.ai
		{Method: http.MethodPost, Path: "/api/devs-ai/chats/completions", Handler: h.DevsAIChatCompletion},

		// IMS token
		{Method: http.MethodPost, Path: "/api/adobe/authenticate", Handler: h.Authenticate},
		{Method: http.MethodDelete, Path: "/api/adobe/token", Handler: h.InvalidateToken},

		// VIP Marketplace
		{Method: http.MethodGet, Path: adobeProxyPrefix + "/v3/healthcheck", Handler: h.forward(healthcheckSpec)},
		{Method: http.MethodGet, Path: adobeProxyPrefix + "/v3/customers/{customerId}", Handler: h.forward(customerSpec)},
		{Method: http.MethodPost, Path: adobeProxyPrefix + "/v3/customers/{customerId}/orders", Handler: h.forward(createOrderSpec)},
		{Method: http.MethodGet, Path: adobeProxyPrefix + "/v3/customers/{customerId}/orders", Handler: h.forward(ordersSpec)},
		{Method: http.MethodGet, Path: adobeProxyPrefix + "/v3/customers/{customerId}/orders/{orderId}", Handler: h.forward(orderSpec)},
		{Method: http.MethodGet, Path: adobeProxyPrefix + "/v3/customers/{customerId}/subscriptions", Handler: h.forward(subscriptionsSpec)},
		{Method: http.MethodGet, Path: adobeProxyPrefix + "/v3/flex-discounts", Handler: h.forward(flexDiscountsSpec)},
		{Method: http.MethodPost, Path: adobeProxyPrefix + "/v3/pricelist", Handler: h.forward(priceListSpec)},
		{Method: http.MethodPost, Path: adobeProxyPrefix + "/v3/recommendations", Handler: h.forward(recommendationsSpec)},
	}
}
