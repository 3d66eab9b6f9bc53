/*
Package handlers implements the request handlers behind the voxagent HTTP API.

Each handler owns one endpoint family and depends only on small consumer-side
interfaces, so transports and fakes plug in cleanly:

  - SpeechHandler      — POST /api/speech: text or audio in, transcript,
    agent reply, and a synthesized audio URL out
  - FilesHandler       — vector-store document upload, listing, deletion
  - ComputerUseHandler — autonomous browser navigation, both one-shot JSON
    and a WebSocket stream of per-round progress frames
  - LanguageHandler    — POST /api/detect-language
  - SessionHandler     — JWT session minting and verification
  - AgentsHandler      — GET /api/agents catalog
  - MediaHandler       — serves generated audio and screenshots by basename
  - HealthHandler      — /health, /healthz, /ready with pluggable checks

Shared plumbing lives in common.go: WriteJSON / WriteError render every
payload, errors surface on the wire as {"error": "<message>"} with the HTTP
status derived from the error code, and ResponseWriter wraps the underlying
writer to capture status codes for middleware while still supporting
connection hijacking through Unwrap.
*/
package handlers
