// Package textutil provides caption text helpers: token fingerprints for
// spotting captions a translation left unchanged, and filename sanitization
// for caption exports.
//
// Tokenization case-folds with golang.org/x/text/cases and splits on
// anything that is not a letter, mark or digit, so non-Latin scripts
// fingerprint as well as English.
package textutil
