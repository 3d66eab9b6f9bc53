/*
Package main is the voxagent server executable.

Subcommands: serve (run the HTTP API and metrics listeners), migrate
(database migrations), version, health.

The serve command loads YAML/environment configuration, builds the zap
logger (optionally rotating through lumberjack), wires the OpenAI
client into the agent registry, speech pipeline, vector store manager
and browser navigator, and runs two listeners: the API server and a
separate Prometheus /metrics port. Requests pass through a middleware
chain of recovery, request IDs, security headers, logging, CORS,
per-IP rate limiting, metrics, optional OTel tracing, and best-effort
session token resolution. Shutdown is signal-driven and graceful.

Version, BuildTime and GitCommit are injected through ldflags.
*/
package main
