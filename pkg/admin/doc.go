// Package admin provides the HTTP surface used to manage mock routes at
// runtime.
//
// Endpoints:
//
//	POST /__admin/routes   - Add or replace a route
//	GET  /__admin/routes   - List routes (method, path, status, delayMs)
//	POST /__admin/save     - Write the routes file now
//	POST /__admin/shutdown - Stop the server gracefully
//	GET  /__admin/health   - Liveness and route count
//	GET  /__admin/metrics  - Prometheus metrics
//
// Admin paths only claim their exact method. Any other request, including
// PUT /__admin/routes, falls through to the mock dispatcher.
//
// Example curl commands:
//
//	# Register a route
//	curl -X POST http://localhost:3000/__admin/routes \
//	  -H "Content-Type: application/json" \
//	  -d '{"method": "GET", "path": "/ping", "status": 200, "response": {"pong": true}}'
//
//	# List routes
//	curl http://localhost:3000/__admin/routes
package admin
