// Package httpserver builds the echo server and its request pipeline.
//
// Every request passes through, in order: request logging, panic recovery,
// correlation IDs, metrics, structured error rendering, the signed-cookie
// parser, the single-origin CORS policy, security headers and the per-IP rate
// limiter. Handlers bind and validate input with Bind; a failure is rendered as
// a 400 before the handler's own logic runs.
//
// The only routes are operational: /health/live, /health/ready, /version and
// /metrics.
package httpserver
