package settlement

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

const (
	// FieldCheckMac carries the digest and is excluded from signing.
	FieldCheckMac = "CheckMacValue"
	FieldRtnCode  = "RtnCode"
	FieldOrderRef = "CustomField1"

	// AckOK is the body the gateway expects after a processed callback.
	AckOK = "1|OK"
)

// Signer signs and verifies gateway callbacks with HMAC-SHA256 over the
// fields sorted by key and joined as k=v pairs with '&'.
type Signer struct {
	key []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{key: []byte(secret)}
}

func canonical(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == FieldCheckMac {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
	}
	return b.String()
}

func (s *Signer) mac(fields map[string]string) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(canonical(fields)))
	return h.Sum(nil)
}

// Sign returns the upper-case hex digest for fields.
func (s *Signer) Sign(fields map[string]string) string {
	return strings.ToUpper(hex.EncodeToString(s.mac(fields)))
}

// Verify compares the CheckMacValue field with the expected digest in
// constant time. Hex case is ignored.
func (s *Signer) Verify(fields map[string]string) bool {
	got, err := hex.DecodeString(strings.ToLower(fields[FieldCheckMac]))
	if err != nil || len(got) == 0 {
		return false
	}
	return hmac.Equal(got, s.mac(fields))
}
