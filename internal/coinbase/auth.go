package coinbase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// buildJWT signs one request per the CDP API key scheme: an ES256 token
// scoped to a single method+host+path, valid for two minutes.
func (c *Client) buildJWT(method, path string) (string, error) {
	pem := strings.ReplaceAll(c.keySecret, `\n`, "\n")
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(pem))
	if err != nil {
		return "", fmt.Errorf("parse api secret: %w", err)
	}

	host := c.baseURL
	if u, err := url.Parse(c.baseURL); err == nil && u.Host != "" {
		host = u.Host
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"sub": c.keyName,
		"iss": "cdp",
		"nbf": now.Unix(),
		"exp": now.Add(2 * time.Minute).Unix(),
		"uri": fmt.Sprintf("%s %s%s", method, host, path),
	})
	token.Header["kid"] = c.keyName
	nonce, err := randomNonce()
	if err != nil {
		return "", err
	}
	token.Header["nonce"] = nonce

	return token.SignedString(key)
}

func randomNonce() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
