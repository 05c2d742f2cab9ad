// Package config resolves the server's and client's runtime settings.
// The server's come from three layered sources, lowest to highest
// precedence: built-in defaults, an optional TOML file, and CLI flags.
// This mirrors the teacher's flat flag.* usage in cmd/server/main.go,
// generalized with a file layer per SPEC_FULL.md §6. The client's come
// from built-in defaults and positional arguments only; it reads no file.
package config
