// Package appfs exposes the static assets shipped with the binary:
// database migrations, email templates and the common-passwords list.
package appfs

import "embed"

// The base email layouts are named explicitly: embed skips files with a
// leading underscore unless a pattern names them.
//
//go:embed migrations templates assets
//go:embed templates/email/_base.txt templates/email/_base.gohtml
var FS embed.FS
