// Package cli implements the interactive ShelfSync console: a small REPL
// over the session and sync services. Command handlers print for humans and
// log failures; the loop itself never terminates on a command error.
package cli
