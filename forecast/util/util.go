// Package util holds small formatting helpers shared by the table printers.
package util

import "strings"

// IndentExpand repeats indent depth times
func IndentExpand(indent string, depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(indent, depth)
}
