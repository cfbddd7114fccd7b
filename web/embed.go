package web

import "embed"

// FS: шаблоны страниц и статика, вшитые в бинарник.
//
//go:embed templates static
var FS embed.FS
