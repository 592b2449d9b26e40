package verify

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"

	"github.com/CovenantEyes/winsparkle/internal/utils"
)

// Signer produces feed signatures for release artifacts.
type Signer struct {
	entity    *openpgp.Entity
	publicKey []byte
}

// NewSigner loads an ASCII-armored private key (unencrypted).
func NewSigner(armoredPrivateKey string) (*Signer, error) {
	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredPrivateKey))
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no keys found")
	}
	return newSigner(entities[0])
}

func newSigner(entity *openpgp.Entity) (*Signer, error) {
	if entity.PrivateKey == nil {
		return nil, fmt.Errorf("key %X has no private part", entity.PrimaryKey.Fingerprint)
	}
	if entity.PrivateKey.Encrypted {
		return nil, fmt.Errorf("key %X is passphrase protected", entity.PrimaryKey.Fingerprint)
	}

	var pub bytes.Buffer
	w, err := armor.Encode(&pub, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, fmt.Errorf("creating armor encoder: %w", err)
	}
	if err := entity.Serialize(w); err != nil {
		return nil, fmt.Errorf("serializing public key: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing armor encoder: %w", err)
	}

	return &Signer{entity: entity, publicKey: pub.Bytes()}, nil
}

// PublicKey returns the armored public key to ship with the application.
func (s *Signer) PublicKey() []byte { return s.publicKey }

// Sign returns a base64 detached signature suitable for the feed's signature
// attribute.
func (s *Signer) Sign(artifactPath string) (string, error) {
	f, err := os.Open(artifactPath)
	if err != nil {
		return "", err
	}
	defer utils.Close(f)

	var buf bytes.Buffer
	if err := openpgp.DetachSign(&buf, s.entity, f, nil); err != nil {
		return "", fmt.Errorf("detached sign: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SignArmored returns an armored detached signature block.
func (s *Signer) SignArmored(artifactPath string) (string, error) {
	f, err := os.Open(artifactPath)
	if err != nil {
		return "", err
	}
	defer utils.Close(f)

	var buf bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&buf, s.entity, f, nil); err != nil {
		return "", fmt.Errorf("detached sign: %w", err)
	}
	return buf.String(), nil
}
