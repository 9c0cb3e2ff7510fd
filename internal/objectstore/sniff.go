package objectstore

import "bytes"

var (
	pngSignature  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	jpegSignature = []byte{0xFF, 0xD8, 0xFF}
	riffSignature = []byte("RIFF")
	webpSignature = []byte("WEBP")
)

// DetectImageType sniffs the magic bytes of data and returns the matching
// content type. The declared Content-Type of the source is never trusted.
func DetectImageType(data []byte) (string, bool) {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return "image/png", true
	case bytes.HasPrefix(data, jpegSignature):
		return "image/jpeg", true
	case len(data) >= 12 && bytes.HasPrefix(data, riffSignature) && bytes.Equal(data[8:12], webpSignature):
		return "image/webp", true
	default:
		return "", false
	}
}
