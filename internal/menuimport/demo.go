package menuimport

import _ "embed"

// demoDocument is a small bundled menu in the upstream wire format, used
// to exercise the full import path without an API key.
//
//go:embed demo_menu.json
var demoDocument []byte

// DemoDocument returns the bundled demo menu as raw JSON.
func DemoDocument() []byte {
	return demoDocument
}
