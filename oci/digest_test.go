package oci_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corral-dev/corral-host-sdk/oci"
)

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func Test_ParseDigest_Valid(t *testing.T) {
	hexVal := sha256Hex([]byte("wasm"))

	d, err := oci.ParseDigest("sha256:" + hexVal)

	require.NoError(t, err)
	assert.Equal(t, "sha256", d.Algorithm())
	assert.Equal(t, hexVal, d.Value())
	assert.Equal(t, "sha256:"+hexVal, d.String())
}

func Test_ParseDigest_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no separator", "sha256abcdef"},
		{"unsupported algorithm", "md5:abcdef"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := oci.ParseDigest(tt.input)
			require.Error(t, err)
		})
	}
}

func Test_NewDigest_RejectsUnknownAlgorithm(t *testing.T) {
	_, err := oci.NewDigest("crc32", "abcdef")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported digest algorithm")
}

func Test_Digest_VerifyMatch(t *testing.T) {
	data := []byte("component bytes")
	d, err := oci.NewDigest("sha256", sha256Hex(data))
	require.NoError(t, err)

	assert.NoError(t, d.Verify(data))
}

func Test_Digest_VerifyMismatch(t *testing.T) {
	d, err := oci.NewDigest("sha256", sha256Hex([]byte("original")))
	require.NoError(t, err)

	err = d.Verify([]byte("tampered"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")
}

func Test_Digest_Equals(t *testing.T) {
	a, err := oci.NewDigest("sha256", "abc")
	require.NoError(t, err)
	b, err := oci.NewDigest("sha256", "abc")
	require.NoError(t, err)
	c, err := oci.NewDigest("sha512", "abc")
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}

func Test_ComputeDigestSHA256(t *testing.T) {
	d, err := oci.ComputeDigestSHA256(strings.NewReader("wasm"))

	require.NoError(t, err)
	assert.Equal(t, "sha256:"+sha256Hex([]byte("wasm")), d.String())
}

func Test_Component_VerifyIntegrity(t *testing.T) {
	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	c := &oci.Component{
		Reference: "registry.example.com/app:1.0.0",
		Digest:    "sha256:" + sha256Hex(wasm),
		Wasm:      wasm,
	}

	assert.NoError(t, c.VerifyIntegrity())
}

func Test_Component_VerifyIntegrityTampered(t *testing.T) {
	c := &oci.Component{
		Reference: "registry.example.com/app:1.0.0",
		Digest:    "sha256:" + sha256Hex([]byte("published bytes")),
		Wasm:      []byte("swapped bytes"),
	}

	err := c.VerifyIntegrity()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry.example.com/app:1.0.0")
	assert.Contains(t, err.Error(), "digest mismatch")
}

func Test_EnvAuthProvider_ReadsEnvironment(t *testing.T) {
	t.Setenv("CORRAL_REGISTRY_USERNAME", "deploy")
	t.Setenv("CORRAL_REGISTRY_PASSWORD", "hunter2")

	user, pass, err := oci.NewEnvAuthProvider().GetCredentials(context.Background(), "registry.example.com")

	require.NoError(t, err)
	assert.Equal(t, "deploy", user)
	assert.Equal(t, "hunter2", pass)
}
