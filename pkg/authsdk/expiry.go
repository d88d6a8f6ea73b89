package authsdk

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpirySkew is subtracted from the exp claim so a token is refreshed before
// the backend starts rejecting it.
const ExpirySkew = 30 * time.Second

// segmentParser only decodes segments, it never verifies anything. Padding is
// tolerated because some issuers emit padded base64url.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// stdToURL maps the standard base64 alphabet onto base64url so payloads in
// either alphabet decode.
var stdToURL = strings.NewReplacer("+", "-", "/", "_")

// IsAccessTokenExpired reports whether token's exp claim is within ExpirySkew
// of now. The signature is not checked. A missing or non-numeric exp counts as
// 0, so such tokens are expired. A token that cannot be decoded at all is
// reported as not expired; the 401 retry in Manager.Do covers that case.
func IsAccessTokenExpired(token string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}

	payload, err := segmentParser.DecodeSegment(stdToURL.Replace(parts[1]))
	if err != nil {
		return false
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil || decoded == nil {
		return false
	}

	var exp float64
	if claims, ok := decoded.(map[string]any); ok {
		exp, _ = jwt.MapClaims(claims)["exp"].(float64)
	}

	return float64(now.Unix()) >= exp-ExpirySkew.Seconds()
}
