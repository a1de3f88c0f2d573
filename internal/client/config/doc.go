// Package config loads runtime configuration for the gymsession terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config; ".yaml"/".yml"
//     files are read as YAML, anything else as JSON.
//  3. Environment variables (GYM_SERVER_ADDR, GYM_TRANSPORT, GYM_DATABASE_PATH,
//     GYM_REQUEST_TIMEOUT, GYM_ONLINE_CHECK_INTERVAL, GYM_LOG_LEVEL).
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string     server address (host:port or URL)
//	-t string     transport: http or grpc
//	-d string     path of the local session database
//	-r duration   per-request timeout
//	-i int        online status check interval (seconds)
//	-l string     log level: debug, info, warn, error
//
// # File schema
//
// Durations accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_addr": "127.0.0.1:8080",
//	  "transport": "http",
//	  "database_path": "gymsession.db",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "log_level": "info"
//	}
package config
