// Package upstream provides the HTTP transport shared by the resilient
// news and market clients: a resty client with a base URL, a per-request
// timeout and an outbound token-bucket limiter.
package upstream
