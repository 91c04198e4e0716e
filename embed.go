package dropwall

import "embed"

// StaticFS holds the stylesheet and the small htmx glue script served under /static/.
//
//go:embed static
var StaticFS embed.FS
