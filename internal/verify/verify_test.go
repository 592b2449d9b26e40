package verify

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CovenantEyes/winsparkle/internal/errs"
	"github.com/CovenantEyes/winsparkle/internal/logger"
)

func TestMain(m *testing.M) {
	logger.UseTestMode()
	os.Exit(m.Run())
}

var (
	keyOnce    sync.Once
	keyErr     error
	testEntity *openpgp.Entity
	otherKey   *openpgp.Entity
)

func testKeys(t *testing.T) (*openpgp.Entity, *openpgp.Entity) {
	t.Helper()
	keyOnce.Do(func() {
		testEntity, keyErr = openpgp.NewEntity("Release", "", "release@example.com", nil)
		if keyErr != nil {
			return
		}
		otherKey, keyErr = openpgp.NewEntity("Mallory", "", "mallory@example.com", nil)
	})
	require.NoError(t, keyErr)
	return testEntity, otherKey
}

func armoredPrivate(t *testing.T, e *openpgp.Entity) string {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, e.SerializePrivate(w, nil))
	require.NoError(t, w.Close())
	return buf.String()
}

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "setup.exe")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestSignAndVerify(t *testing.T) {
	e, _ := testKeys(t)
	signer, err := NewSigner(armoredPrivate(t, e))
	require.NoError(t, err)

	v, err := NewOpenPGP(string(signer.PublicKey()))
	require.NoError(t, err)

	path := writeArtifact(t, "installer payload")

	sig, err := signer.Sign(path)
	require.NoError(t, err)
	assert.NoError(t, v.Verify(path, sig))

	armored, err := signer.SignArmored(path)
	require.NoError(t, err)
	assert.NoError(t, v.Verify(path, armored))
}

func TestVerify_Rejects(t *testing.T) {
	e, other := testKeys(t)
	signer, err := newSigner(e)
	require.NoError(t, err)
	mallory, err := newSigner(other)
	require.NoError(t, err)

	v, err := NewOpenPGP(string(signer.PublicKey()))
	require.NoError(t, err)

	path := writeArtifact(t, "installer payload")
	good, err := signer.Sign(path)
	require.NoError(t, err)
	forged, err := mallory.Sign(path)
	require.NoError(t, err)

	tampered := writeArtifact(t, "installer payload!")

	tests := []struct {
		name string
		path string
		sig  string
	}{
		{"tampered artifact", tampered, good},
		{"foreign key", path, forged},
		{"empty signature", path, ""},
		{"not base64", path, "%%%not-base64%%%"},
		{"garbage bytes", path, "aGVsbG8gd29ybGQ="},
		{"missing file", filepath.Join(t.TempDir(), "nope.exe"), good},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.path, tt.sig)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrVerification))
		})
	}
}

func TestFromSources(t *testing.T) {
	e, _ := testKeys(t)
	signer, err := newSigner(e)
	require.NoError(t, err)

	v, err := FromSources("", "")
	assert.NoError(t, err)
	assert.Nil(t, v)

	keyFile := filepath.Join(t.TempDir(), "pub.asc")
	require.NoError(t, os.WriteFile(keyFile, signer.PublicKey(), 0o600))
	v, err = FromSources("", keyFile)
	require.NoError(t, err)
	assert.NotNil(t, v)

	_, err = FromSources("not a key", "")
	assert.True(t, errors.Is(err, errs.ErrConfiguration))

	_, err = FromSources("", filepath.Join(t.TempDir(), "missing.asc"))
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestNewSigner_PublicOnlyKey(t *testing.T) {
	e, _ := testKeys(t)
	signer, err := newSigner(e)
	require.NoError(t, err)

	_, err = NewSigner(string(signer.PublicKey()))
	assert.Error(t, err)
}
