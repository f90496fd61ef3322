package pdf

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer turns an image into text.
type Recognizer interface {
	Recognize(image []byte) (string, error)
}

// Tesseract recognizes text with the Tesseract engine. Each call uses its
// own engine client, so a Tesseract is safe for concurrent use.
type Tesseract struct {
	Languages []string
}

// NewTesseract creates a Tesseract recognizer. With no languages the
// engine default (English) is used.
func NewTesseract(languages ...string) *Tesseract {
	return &Tesseract{Languages: languages}
}

func (t *Tesseract) Recognize(image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if len(t.Languages) > 0 {
		if err := client.SetLanguage(t.Languages...); err != nil {
			return "", fmt.Errorf("%w: %w", ErrRecognizeFailed, err)
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRecognizeFailed, err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRecognizeFailed, err)
	}
	return text, nil
}
