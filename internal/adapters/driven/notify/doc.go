// Package notify implements Notifier adapters for the terminal surfaces.
//
// Console prints coloured lines for the CLI. Recorder keeps notifications
// in memory until a surface such as the TUI drains them.
package notify
