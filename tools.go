//go:build tools

// Package tools pins the code generation and lint tools used by this module.
package tools

import (
	_ "golang.org/x/lint/golint"
	_ "golang.org/x/tools/cmd/stringer"
)
