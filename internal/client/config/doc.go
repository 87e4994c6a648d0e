// Package config loads the CLI configuration. Later sources override
// earlier ones: built-in defaults, then the JSON file named by -c/-config,
// then command-line flags.
//
//	-a string   default server address
//	-r string   data root (accounts, history, media cache)
//	-i int      background sync interval, seconds
//	-t int      per-request timeout, seconds
//	-l string   log level
//
// Durations in the JSON file may be strings such as "3s" or nanoseconds:
//
//	{"server_endpoint_addr": "chat.example:50051", "sync_interval": "5s"}
package config
