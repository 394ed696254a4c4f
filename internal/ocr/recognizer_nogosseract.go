//go:build !gosseract

package ocr

import "errors"

func newGosseractRecognizer(Config) (PageRecognizer, error) {
	return nil, errors.New("binary built without the gosseract tag")
}
