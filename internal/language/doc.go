// Package language lists the caption translation targets and resolves
// language codes and display names through golang.org/x/text.
package language
