// Package extractors turns uploaded document bytes into plain text.
//
// Each sub-package implements driven.Extractor for one family of formats.
// The Registry in this package picks the highest-priority extractor for a
// document's MIME type, falling back to the file extension when the
// declared type is missing or generic.
package extractors
