/*
Package server manages the HTTP server lifecycle: non-blocking
startup, graceful shutdown, and SIGINT/SIGTERM handling.

Manager wraps net/http.Server with a bounded listener (MaxConns via
netutil.LimitListener), an asynchronous error channel, and TLS
support. WaitForShutdown blocks until a signal or a server failure
and then drains in-flight requests within the configured timeout.
*/
package server
