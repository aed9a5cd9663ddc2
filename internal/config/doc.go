// Package config loads the spotify-info command configuration.
//
// Settings come from a TOML file, then SPOTIFY_INFO_* environment variables,
// then command-line flags, each layer overriding the previous one:
//
//	[listener]
//	address = "127.0.0.1:19532"
//	path = "/"
//	codec = "tagged"
//	progress_interval_ms = 1000
//
//	[status]
//	address = "127.0.0.1:19533"
//
//	[log]
//	level = "info"
//	format = "text"
//
// The default file is $XDG_CONFIG_HOME/spotify-info/config.toml.
package config
