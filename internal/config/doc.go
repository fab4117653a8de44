// Package config loads macrorunner's configuration.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. built-in defaults (Default)
//  2. the TOML file, by default <UserConfigDir>/macrorunner/config.toml
//  3. MACRORUNNER_* environment variables
//  4. command-line flags, applied by the caller
//
// A config file looks like:
//
//	[logging]
//	level = "debug"
//
//	[script]
//	macros_dir = "~/macros"
//	debug_mode = true
//	reject_loops = false
//	max_files = 16
//	include_dir = "/srv/snippets"
//	allowed_env = ["USER", "HOME"]
//	timeout = "30s"
//
//	[replay]
//	frame_delay = "250ms"
//	preview = false
//
//	[watch]
//	debounce = "200ms"
//
// Unknown keys are rejected with a *ParseError so typos do not go unnoticed.
// Call Validate once every layer has been applied.
package config
