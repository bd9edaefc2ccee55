package media

import (
	"encoding/base64"
	"errors"
	"strings"
)

const defaultContentType = "application/octet-stream"

var ErrInvalidDataURI = errors.New("invalid data URI")

// EncodeDataURI builds a self-describing base64 data URI for an uploaded blob.
func EncodeDataURI(contentType string, data []byte) string {
	if strings.TrimSpace(contentType) == "" {
		contentType = defaultContentType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI back into content type and bytes.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, ErrInvalidDataURI
	}
	return contentType, data, nil
}
