package web

import "embed"

// TemplatesFS embeds the dashboard page and partial templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the dashboard stylesheet.
//
//go:embed static/*
var StaticFS embed.FS
