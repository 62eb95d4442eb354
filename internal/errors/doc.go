// Package errors provides the coded, actionable error messages the joestar
// command prints.
//
// Each code maps to a category, a short message and a detail line:
//
//	err := errors.New("J101").
//	    WithDetail("joestar.yaml: line 3: cannot unmarshal").
//	    WithSuggestion("Check the file is valid YAML")
//	errors.PrintError(err)
//
// Errors wrap their cause, so errors.Is and errors.As from the standard
// library see through them.
package errors
