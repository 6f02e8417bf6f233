package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
)

var errEmpty = errors.New("empty payload")

// Decode sniffs data and decodes it into an image. The error, if any, is
// a plain error; Loader wraps it into a DecodeError with the URL.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", errEmpty
	}
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return nil, "", fmt.Errorf("not an image (detected %q)", kind.MIME.Value)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, "", errors.New("image has no pixels")
	}
	return img, format, nil
}
