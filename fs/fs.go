// Package appfs exposes the repo's embedded assets to the rest of the app.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
