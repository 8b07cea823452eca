// Package driving provides interfaces for primary/inbound ports.
// The CLI and MCP adapters invoke the pipeline through these; the web
// transport itself lives outside this repository.
package driving
