// Package embedded provides the embedded prompt files.
package embedded

import "embed"

//go:embed commit-message.md
var FS embed.FS
