package inference

import (
	"encoding/base64"
)

// EncodeBase64 encodes raw image bytes to standard base64.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DataURL builds a data: URL for inline image payloads.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + EncodeBase64(data)
}
