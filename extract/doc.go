// Package extract turns a URL into raw text using one of several
// strategies chosen by format classification.
//
// Strategies never fail: transport errors, unparsable markup and
// unreadable PDFs all produce empty text, which the caller treats as "no
// content". Failures are logged at debug level.
package extract
