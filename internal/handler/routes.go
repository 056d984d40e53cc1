package handler

// APIPrefix is the canonical base path for the public HTTP API.
// Keep a single source of truth to avoid path drift across handlers and tests.
const APIPrefix = "/api"

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"
