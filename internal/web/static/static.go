// Package static embeds the stylesheet and other browser assets.
package static

import "embed"

//go:embed css
var FS embed.FS
