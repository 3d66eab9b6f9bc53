/*
Package metrics collects Prometheus metrics across the service: HTTP
traffic, model API usage, the speech pipeline, autonomous browsing
sessions, and document store operations.

The Collector registers every instrument through promauto under a
single namespace. Record methods are safe for concurrent use; HTTP
status codes are bucketed into 2xx/3xx/4xx/5xx classes to keep label
cardinality bounded.
*/
package metrics
