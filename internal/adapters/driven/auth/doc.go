// Package auth reads claims from the bearer tokens the backend issues.
package auth
