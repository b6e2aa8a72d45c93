// Package totp wraps time-based one-time password generation and
// verification for two-factor authentication.
package totp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"regexp"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// secretSize is the raw secret length in bytes (160 bits, RFC 4226).
	secretSize = 20

	// period is the TOTP time step in seconds.
	period = 30

	// skew is the number of adjacent time steps accepted on either side of
	// the current one, to tolerate clock drift between server and device.
	skew = 1

	// qrSize is the pixel size of the generated provisioning QR image.
	qrSize = 200
)

// codePattern matches a structurally valid 6-digit code.
var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

// Provider generates and verifies TOTP codes for a fixed issuer label.
type Provider struct {
	issuer string
}

// NewProvider creates a Provider. The issuer is the label shown in
// authenticator apps next to the account name.
func NewProvider(issuer string) *Provider {
	return &Provider{issuer: issuer}
}

// GenerateSecret creates a fresh random secret and the provisioning
// artifacts for the given account (the user's email). It returns the base32
// secret for manual entry, the otpauth:// provisioning URI, and the URI
// rendered as a PNG data URI ready to embed in an <img> tag.
func (p *Provider) GenerateSecret(account string) (secret, otpauthURL, qrCode string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer,
		AccountName: account,
		SecretSize:  secretSize,
		Period:      period,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", "", fmt.Errorf("failed to generate totp secret: %w", err)
	}

	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to render qr image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", "", "", fmt.Errorf("failed to encode qr png: %w", err)
	}

	qr := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	return key.Secret(), key.URL(), qr, nil
}

// Validate checks a submitted code against a stored secret. The code must
// be structurally valid (6 digits) before any cryptographic work is done.
// Codes from the previous, current, and next 30-second step are accepted.
func (p *Provider) Validate(code, secret string) bool {
	if !codePattern.MatchString(code) {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
