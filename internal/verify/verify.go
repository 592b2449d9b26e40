// Package verify gates installers behind a detached OpenPGP signature.
package verify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"

	"github.com/CovenantEyes/winsparkle/internal/errs"
	"github.com/CovenantEyes/winsparkle/internal/utils"
)

// Verifier checks an artifact against the signature published in the feed.
// Any non-nil error means the artifact must not be installed.
type Verifier interface {
	Verify(artifactPath, signature string) error
}

// OpenPGP verifies detached signatures made by any key of a public keyring.
type OpenPGP struct {
	keyring openpgp.EntityList
}

// NewOpenPGP loads an ASCII-armored public keyring.
func NewOpenPGP(armoredKey string) (*OpenPGP, error) {
	keyring, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredKey))
	if err != nil {
		return nil, errs.New(errs.ConfigurationError, "verify.load_key", fmt.Errorf("reading public key: %w", err))
	}
	if len(keyring) == 0 {
		return nil, errs.Newf(errs.ConfigurationError, "verify.load_key", "no public keys found")
	}
	return &OpenPGP{keyring: keyring}, nil
}

// FromSources builds a verifier from an inline key or a key file, the inline
// key winning. It returns nil and no error when neither is set.
func FromSources(inline, file string) (Verifier, error) {
	key := strings.TrimSpace(inline)
	if key == "" && file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errs.New(errs.ConfigurationError, "verify.load_key", err)
		}
		key = string(data)
	}
	if key == "" {
		return nil, nil
	}
	return NewOpenPGP(key)
}

// Verify accepts an armored signature block or a base64 binary signature.
func (v *OpenPGP) Verify(artifactPath, signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return errs.Newf(errs.VerificationFailure, "verify", "feed carries no signature for %s", artifactPath)
	}

	f, err := os.Open(artifactPath)
	if err != nil {
		return errs.New(errs.VerificationFailure, "verify", err)
	}
	defer utils.Close(f)

	var sig io.Reader
	armored := strings.HasPrefix(signature, "-----BEGIN")
	if armored {
		sig = strings.NewReader(signature)
	} else {
		raw, err := decodeBase64(signature)
		if err != nil {
			return errs.New(errs.VerificationFailure, "verify", fmt.Errorf("decoding signature: %w", err))
		}
		sig = bytes.NewReader(raw)
	}

	var signer *openpgp.Entity
	if armored {
		signer, err = openpgp.CheckArmoredDetachedSignature(v.keyring, f, sig, nil)
	} else {
		signer, err = openpgp.CheckDetachedSignature(v.keyring, f, sig, nil)
	}
	if err != nil {
		return errs.New(errs.VerificationFailure, "verify", err)
	}
	if signer == nil {
		return errs.Newf(errs.VerificationFailure, "verify", "no signer identified")
	}
	return nil
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if raw, err := base64.StdEncoding.DecodeString(s); err == nil {
		return raw, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
