package docid

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tenant    string
		docType   string
		naturalID string
	}{
		{name: "company document", tenant: "1854", docType: "company", naturalID: "42"},
		{name: "rental document", tenant: "7", docType: "rental", naturalID: "100231"},
		{name: "empty natural id", tenant: "1", docType: "user", naturalID: ""},
		{name: "unicode parts", tenant: "tenant-é", docType: "work_order", naturalID: "wo/ü?+"},
		{name: "long natural id", tenant: "99", docType: "asset", naturalID: strings.Repeat("x", 300)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id := Encode(tt.tenant, tt.docType, tt.naturalID)
			parts, err := Decode(id)
			require.NoError(t, err)
			assert.Equal(t, Parts{Tenant: tt.tenant, Type: tt.docType, NaturalID: tt.naturalID}, parts)
		})
	}
}

func TestEncode_KnownCompanyID(t *testing.T) {
	t.Parallel()

	id := Encode("1854", "company", "42")
	assert.Equal(t, base64.RawURLEncoding.EncodeToString([]byte("1854|company|42")), id)

	parts, err := Decode(id)
	require.NoError(t, err)
	assert.Equal(t, "1854", parts.Tenant)
	assert.Equal(t, "company", parts.Type)
	assert.Equal(t, "42", parts.NaturalID)
}

func TestEncode_Deterministic(t *testing.T) {
	t.Parallel()

	first := Encode("5", "asset", "1001")
	for range 10 {
		assert.Equal(t, first, Encode("5", "asset", "1001"))
	}
	assert.NotEqual(t, first, Encode("7", "asset", "1001"))
	assert.NotEqual(t, first, Encode("5", "rental", "1001"))
}

func TestEncode_URLSafe(t *testing.T) {
	t.Parallel()

	// These inputs produce '+', '/' and padding under standard base64.
	inputs := [][3]string{
		{"~~~", "???", ">>>"},
		{"a", "b", "c"},
		{"ab", "cd", "e"},
		{"\xfb\xff", "type", "\xfe"},
	}

	for _, in := range inputs {
		id := Encode(in[0], in[1], in[2])
		assert.NotContains(t, id, "+")
		assert.NotContains(t, id, "/")
		assert.NotContains(t, id, "=")

		parts, err := Decode(id)
		require.NoError(t, err)
		assert.Equal(t, Parts{Tenant: in[0], Type: in[1], NaturalID: in[2]}, parts)
	}
}

func TestDecode_AcceptsPadding(t *testing.T) {
	t.Parallel()

	padded := base64.URLEncoding.EncodeToString([]byte("1|user|2"))
	require.True(t, strings.HasSuffix(padded, "="))

	parts, err := Decode(padded)
	require.NoError(t, err)
	assert.Equal(t, Parts{Tenant: "1", Type: "user", NaturalID: "2"}, parts)
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
	}{
		{name: "not base64", id: "!!!not-base64!!!"},
		{name: "too few parts", id: base64.RawURLEncoding.EncodeToString([]byte("1854|company"))},
		{name: "too many parts", id: Encode("18|54", "company", "42")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decode(tt.id)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedID)
		})
	}
}

func TestParts_String(t *testing.T) {
	t.Parallel()

	p := Parts{Tenant: "3", Type: "user", NaturalID: "11"}
	assert.Equal(t, Encode("3", "user", "11"), p.String())
}
