// Package watch finds local files for upload.
//
// Watcher reports files created or written under a directory tree using
// fsnotify. Files opens them for upload, and Expand resolves "**" globs.
// Patterns use doublestar syntax and match paths relative to the watched
// directory.
package watch
