// Package telegram verifies the signed initData launch payload that the
// Telegram host app hands to an embedded mini-app.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"footy-quiz-service/internal/domain"
)

// webAppDomain is the domain-separation key Telegram uses to derive the
// per-bot secret from the raw bot token.
const webAppDomain = "WebAppData"

type initDataUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// Verify checks the authenticity of a raw initData query string against the
// bot token and returns the embedded user identity.
//
// The check string is the remaining key=value pairs (hash removed), keys
// sorted byte-wise, joined by newlines. The signing key is
// HMAC-SHA256("WebAppData", botToken); the signature is
// HMAC-SHA256(signingKey, checkString), hex-encoded lowercase.
func Verify(rawInitData, botToken string) (domain.Identity, error) {
	values, err := url.ParseQuery(rawInitData)
	if err != nil {
		return domain.Identity{}, domain.ErrMissingSignature
	}

	received := values.Get("hash")
	if received == "" {
		return domain.Identity{}, domain.ErrMissingSignature
	}
	values.Del("hash")

	expected := Sign(checkString(values), botToken)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(received))) {
		return domain.Identity{}, domain.ErrSignatureMismatch
	}

	rawUser := values.Get("user")
	if rawUser == "" {
		return domain.Identity{}, domain.ErrMissingUser
	}
	var user initDataUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID == 0 {
		return domain.Identity{}, domain.ErrMissingUser
	}

	return domain.Identity{
		TelegramID: strconv.FormatInt(user.ID, 10),
		Username:   user.Username,
		FirstName:  user.FirstName,
	}, nil
}

// Sign computes the lowercase hex signature Telegram would produce for the
// given check string. Exported so tests and tooling can build valid payloads.
func Sign(checkString, botToken string) string {
	keyMAC := hmac.New(sha256.New, []byte(webAppDomain))
	keyMAC.Write([]byte(botToken))
	secret := keyMAC.Sum(nil)

	sigMAC := hmac.New(sha256.New, secret)
	sigMAC.Write([]byte(checkString))
	return hex.EncodeToString(sigMAC.Sum(nil))
}

// checkString canonicalizes the payload: keys sorted byte-wise, first value
// per key, newline-joined, no trailing separator.
func checkString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(values.Get(key))
	}
	return b.String()
}
