package http

import (
	"net/http"
	"strings"

	"github.com/bormonoff/Auth-Service/pkg/authsdk"
	"github.com/bormonoff/Auth-Service/pkg/cryptox"
)

// maxFingerprintLen bounds client supplied fingerprints.
const maxFingerprintLen = 256

// DeviceFingerprint identifies the calling device. A fingerprint sent by the
// client wins; otherwise one is derived from request metadata.
func DeviceFingerprint(r *http.Request) string {
	if fp := strings.TrimSpace(r.Header.Get(authsdk.HeaderDeviceFingerprint)); fp != "" && len(fp) <= maxFingerprintLen {
		return fp
	}
	return cryptox.Fingerprint(r.UserAgent(), r.Header.Get("Accept-Language"))
}
