/*
Package observability provides tools for monitoring tree construction.

It includes Prometheus metrics fed by lifecycle hooks, an adapter that turns
any ports.EventPublisher into lifecycle hooks, and hook composition so
several observers can watch the same builder.
*/
package observability
