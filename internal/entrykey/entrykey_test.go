package entrykey

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// If the hashing algorithm used to generate Key values ever changes, the
// keys in existing snapshot files will no longer match newly computed ones.
// This test exists to catch that before it ships.
func TestHashAlgorithmChangeGuard(t *testing.T) {
	k := Of("Title", "")
	assert.Equal(t, "fozSBW2nOn/vts2R9OXRmdCNkFjFF7miR2sbUgMk1nQ=", k.String())
}

func TestOfIsDeterministic(t *testing.T) {
	a := Of("Hello", "https://example.com/1")
	b := Of("Hello", "https://example.com/1")
	assert.Equal(t, a, b)
	assert.Equal(t, "PcuRdK4q2rzU7dz9GIYZSfpCRDQykkWqDVI6dKDhy0E=", a.String())
}

func TestOfDistinguishesInputs(t *testing.T) {
	a := Of("Hello", "https://example.com/1")
	b := Of("Second", "https://example.com/2")
	assert.NotEqual(t, a, b)
}

func TestJSONRoundTrip(t *testing.T) {
	k := Of("Second", "https://example.com/2")

	data, err := json.Marshal(k)
	require.NoError(t, err)
	assert.Equal(t, `"+ucYv6F88tZHhIYb5s2WGL3snwnGdT6EJsb0AHCQIRw="`, string(data))

	var decoded Key
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, k, decoded)
}

func TestParseRejectsWrongLength(t *testing.T) {
	_, err := Parse("dG9vc2hvcnQ=")
	assert.Error(t, err)
}

func TestParseRejectsInvalidBase64(t *testing.T) {
	_, err := Parse("not-base64!!")
	assert.Error(t, err)
}

func TestMapKeyUsage(t *testing.T) {
	m := map[Key]string{
		Of("A", "a"): "first",
		Of("B", "b"): "second",
	}
	assert.Equal(t, "first", m[Of("A", "a")])
}
