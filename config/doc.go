// Package config loads the voxagent service configuration.
//
// Values are resolved in three layers: built-in defaults, then an optional
// YAML file, then environment variables prefixed with VOXAGENT. Nested keys
// join struct env tags with underscores, so server.http_port becomes
// VOXAGENT_SERVER_HTTP_PORT.
package config
