// Package cli implements the command-line interface for the ClickHouse
// diagnostics tool chdiag.
//
// # Overview
//
// chdiag connects to a single ClickHouse server over its HTTP interface,
// runs a fixed sequence of diagnostic queries and host commands, and writes
// one report. It is meant to be run on the database host by an operator
// preparing a support request.
//
// # Commands
//
// The root command collects a report:
//
//	chdiag [--host HOST] [--port 8123] [--format wiki] [--normalize-queries] [--output FILE]
//
// render - Re-render a saved report:
//
//	chdiag render --input report.json.gz --format wiki
//
// # Flags
//
//	--host               Server host name (default: local host name)
//	--port               HTTP interface port (default: 8123)
//	--url                Full endpoint, overrides --port
//	--user               User name sent in X-ClickHouse-User
//	--format, -t         json, yaml, wiki, each optionally .gz (default: wiki)
//	--normalize-queries  Elide literals from captured query text
//	--output, -o         Output file path (default: stdout)
//	--timeout            Per-query timeout (default: 60s)
//	--config-path        Preprocessed server configuration
//	--secret-key         Extra configuration key to mask (repeatable)
//	--max-qps            Client-side query rate limit (default: unlimited)
//	--metrics-file       Prometheus text file for collection metrics
//	--log-level          debug, info, warn, error (default: info)
//
// # Environment Variables
//
//	CHDIAG_HOST, CHDIAG_PORT, CHDIAG_FORMAT, CHDIAG_OUTPUT, ...  Flag defaults
//	CLICKHOUSE_USER    Default for --user
//	LOG_LEVEL          Default for --log-level
//
// # Exit Codes
//
//	0  Report written, including reports with failed steps
//	1  Server unreachable at startup, invalid arguments, or output failure
//	2  Context canceled
//
// Logs are written to stderr as JSON. Stdout carries only the report.
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/clickhouse-diagnostics/pkg/cli.version=1.0.0'"
package cli
