// Package pdf reads PDF documents for ingestion.
//
// Text comes from the document's text layer via tabula, one string per
// page. When the text layer is missing or unusable, pages are rendered to
// PNG images by a Rasterizer and passed through a Recognizer for optical
// character recognition.
//
// Two rasterizers are provided. FitzRasterizer renders full pages with
// MuPDF. ImageRasterizer needs no native renderer: it pulls the largest
// embedded image from each page, which for scanned documents is the page
// scan itself, and upscales it. Chain tries rasterizers in order.
package pdf
