package objectstore

import (
	"net/url"
	"strings"

	"github.com/gesturequiz/gesturequiz/internal/httperr"
)

// ExtractKey pulls the object key out of an S3 URL. Supported shapes:
//
//	https://bucket.s3.region.amazonaws.com/key
//	https://bucket.s3.amazonaws.com/key
//	https://s3.region.amazonaws.com/bucket/key
func ExtractKey(bucket, s3URL string) (string, error) {
	u, err := url.Parse(s3URL)
	if err != nil || u.Host == "" {
		return "", httperr.Wrap(httperr.KindInvalidInput, err, "Invalid S3 URL format")
	}

	if strings.Contains(u.Host, bucket) {
		key := strings.TrimPrefix(u.Path, "/")
		if key == "" {
			return "", httperr.InvalidInput("Invalid S3 URL format")
		}
		return key, nil
	}

	if strings.HasPrefix(u.Host, "s3.") {
		parts := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
		if len(parts) >= 2 && parts[0] == bucket {
			return strings.Join(parts[1:], "/"), nil
		}
	}

	return "", httperr.InvalidInput("Invalid S3 URL format")
}
