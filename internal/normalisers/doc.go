// Package normalisers provides implementations of the Normaliser interface
// for the supported document formats. Each normaliser knows how to extract
// text content from a specific MIME type: plain text, Markdown, and CSV
// exports from banks and brokers.
//
// Normalisers are registered with the NormaliserRegistry at startup.
package normalisers
