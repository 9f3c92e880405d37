package services

import (
	"fmt"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// MediaData is a decoded data URI.
type MediaData struct {
	MIMEType string
	Data     []byte
}

// decodeMediaDataURI decodes a base64 data URI and checks its top-level media
// type ("image", "audio").
func decodeMediaDataURI(uri, mediaType string) (*MediaData, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("not a data URI")
	}

	du, err := dataurl.DecodeString(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URI: %w", err)
	}
	if du.Encoding != dataurl.EncodingBase64 {
		return nil, fmt.Errorf("data URI must be base64 encoded")
	}
	if du.Type != mediaType {
		return nil, fmt.Errorf("expected %s data, got %s", mediaType, du.ContentType())
	}
	if len(du.Data) == 0 {
		return nil, fmt.Errorf("%s payload is empty", mediaType)
	}

	return &MediaData{MIMEType: du.ContentType(), Data: du.Data}, nil
}
