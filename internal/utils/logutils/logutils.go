package logutils

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"
)

// FormatPrinter lazily formats an arbitrary value with a given verb so that
// it's only rendered when the log line is actually emitted.
type FormatPrinter struct {
	verb string
	item any
}

func (v FormatPrinter) String() string {
	return fmt.Sprintf(v.verb, v.item)
}

func Format(verb string, item any) FormatPrinter {
	return FormatPrinter{verb, item}
}

// maxHeaderValueLen is how much of a header value is kept in logs.
const maxHeaderValueLen = 50

// credentialPrefixLen is how much of a credential is kept in logs: enough to
// tell a "ghp_" token from an Entra ID "eyJ0" one.
const credentialPrefixLen = 4

// sensitiveHeaders never have any part of their value logged.
var sensitiveHeaders = map[string]bool{
	"Ocp-Apim-Subscription-Key": true,
}

// RedactHeaders renders request headers for logging. Credentials are cut to
// their scheme and a short prefix, subscription keys are masked entirely and
// other long values are truncated.
func RedactHeaders(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.Join(h[k], ",")
		switch key := http.CanonicalHeaderKey(k); {
		case sensitiveHeaders[key]:
			v = "<redacted>"
		case key == "Authorization":
			v = redactCredential(v)
		default:
			v = Truncate(v, maxHeaderValueLen)
		}
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, " ")
}

func redactCredential(v string) string {
	scheme, cred, ok := strings.Cut(v, " ")
	if !ok || len(cred) <= credentialPrefixLen {
		return "<redacted>"
	}
	return scheme + " " + cred[:credentialPrefixLen] + "..."
}

// Truncate shortens s to at most n bytes, appending "..." if anything was
// cut. It never splits a multi-byte character.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
