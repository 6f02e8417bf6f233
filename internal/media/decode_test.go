package media

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, image.NewRGBA(image.Rect(0, 0, 8, 6)), &jpeg.Options{Quality: 90}))
	pngData := pngBytes(t, 5, 5)

	tests := []struct {
		name       string
		data       []byte
		wantFormat string
		wantErr    bool
	}{
		{name: "jpeg", data: jpg.Bytes(), wantFormat: "jpeg"},
		{name: "png", data: pngData, wantFormat: "png"},
		{name: "empty", data: nil, wantErr: true},
		{name: "text", data: []byte("hello world, definitely not pixels"), wantErr: true},
		{name: "truncated png", data: pngData[:20], wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img, format, err := Decode(tc.data)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Nil(t, img)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantFormat, format)
			assert.NotNil(t, img)
		})
	}
}
