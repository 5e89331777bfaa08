package externalmatch

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	requestSignatureDuration = 10 * time.Second

	renegadeHeaderNamespace         = "x-renegade"
	renegadeAPIKeyHeaderName        = "x-renegade-api-key"
	renegadeAuthHeaderName          = "x-renegade-auth"
	renegadeSigExpirationHeaderName = "x-renegade-auth-expiration"
)

// decodeAuthKey decodes a base64 API secret, accepting both padded and
// unpadded forms
func decodeAuthKey(secret string) ([]byte, error) {
	key, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAPISecret, err)
	}
	return key, nil
}

// addAuthHeaders signs an outbound request and attaches the auth headers.
//
// The signature is an HMAC-SHA256 over path || sorted namespace headers ||
// body, where the header bytes are each header's lowercase name concatenated
// with its value, sorted by name. The expiration header is set before signing
// so it is covered by the signature; the signature header itself is excluded.
func addAuthHeaders(authKey []byte, now time.Time, path string, headers http.Header, body []byte) {
	expiry := now.UnixMilli() + requestSignatureDuration.Milliseconds()
	headers.Set(renegadeSigExpirationHeaderName, strconv.FormatInt(expiry, 10))

	message := append([]byte(path), namespaceHeaderBytes(headers)...)
	message = append(message, body...)

	mac := hmac.New(sha256.New, authKey)
	mac.Write(message)
	signature := base64.RawStdEncoding.EncodeToString(mac.Sum(nil))

	headers.Set(renegadeAuthHeaderName, signature)
}

// namespaceHeaderBytes collects the headers under the auth namespace, other
// than the signature header, and concatenates lowercase name || value in
// sorted name order
func namespaceHeaderBytes(headers http.Header) []byte {
	type header struct {
		name  string
		value string
	}

	var selected []header
	for name, values := range headers {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, renegadeHeaderNamespace) || lower == renegadeAuthHeaderName {
			continue
		}
		if len(values) == 0 {
			continue
		}
		selected = append(selected, header{name: lower, value: values[0]})
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].name < selected[j].name })

	var buf bytes.Buffer
	for _, h := range selected {
		buf.WriteString(h.name)
		buf.WriteString(h.value)
	}
	return buf.Bytes()
}
