// Package observability records what happens during a session. Each completed
// network action is appended to a JSON Lines event log, and session metrics
// are derived on demand by folding over that log. The log is write-mostly
// diagnostics: the network is never rebuilt from it.
package observability
