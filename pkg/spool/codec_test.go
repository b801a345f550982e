package spool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhanx03/go-spooler/pkg/hash"
)

// sealed appends a valid checksum to body, so malformed-field cases reach
// the field parser instead of failing the checksum.
func sealed(body string) []byte {
	return hash.AppendHex([]byte(body+" "), hash.Sum64String(body))
}

// =============================================================================
// Round Trip
// =============================================================================

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"client_file", Request{OriginID: 140245, Label: "FILE_140245_1", SizeUnits: 200}},
		{"label_with_spaces", Request{OriginID: 1, Label: "my report final.txt", SizeUnits: 20000}},
		{"label_with_colons_and_digits", Request{OriginID: 2, Label: "12:34 56", SizeUnits: 1}},
		{"label_looks_like_frame", Request{OriginID: 3, Label: "9 4:evil 7 0123456789abcdef", SizeUnits: 5}},
		{"empty_label", Request{OriginID: 4, Label: "", SizeUnits: 8000}},
		{"unicode_label", Request{OriginID: 5, Label: "résumé – 履歴書", SizeUnits: 42}},
		{"control_bytes", Request{OriginID: 6, Label: "a\x00b\nc\td", SizeUnits: 9}},
		{"negative_origin", Request{OriginID: -77, Label: "x", SizeUnits: 3}},
		{"max_values", Request{OriginID: 1<<63 - 1, Label: "y", SizeUnits: 1<<31 - 1}},
	}

	codec := Codec{MaxFrameSize: 1024}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := codec.Encode(tt.req)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(frame), codec.MaxFrameSize)

			got, err := codec.Decode(frame)
			require.NoError(t, err)
			assert.Equal(t, tt.req, got)
		})
	}
}

func TestCodec_EncodeIsDeterministic(t *testing.T) {
	req := Request{OriginID: 12, Label: "FILE_12_3", SizeUnits: 4096}

	a, err := Codec{}.Encode(req)
	require.NoError(t, err)
	b, err := Codec{}.Encode(req)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, string(sealed("12 9:FILE_12_3 4096")), string(a))
}

func TestCodec_AppendEncodeKeepsPrefix(t *testing.T) {
	dst := []byte("prefix|")
	out, err := Codec{}.AppendEncode(dst, Request{OriginID: 1, Label: "a", SizeUnits: 2})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "prefix|1 1:a 2 "))

	got, err := Codec{}.Decode(out[len(dst):])
	require.NoError(t, err)
	assert.Equal(t, Request{OriginID: 1, Label: "a", SizeUnits: 2}, got)
}

func TestCodec_DecodedLabelDoesNotAliasFrame(t *testing.T) {
	frame, err := Codec{}.Encode(Request{OriginID: 1, Label: "keep", SizeUnits: 2})
	require.NoError(t, err)

	got, err := Codec{}.Decode(frame)
	require.NoError(t, err)

	for i := range frame {
		frame[i] = 'X'
	}
	assert.Equal(t, "keep", got.Label)
}

// =============================================================================
// Size Limits
// =============================================================================

func TestCodec_RejectsOversizedFrame(t *testing.T) {
	codec := Codec{MaxFrameSize: 64}
	req := Request{OriginID: 1, Label: strings.Repeat("L", 64), SizeUnits: 10}

	dst := []byte("keep")
	out, err := codec.AppendEncode(dst, req)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Equal(t, "keep", string(out), "nothing is appended on failure")

	// The largest label that fits is accepted as-is, not truncated.
	fit := Request{OriginID: 1, Label: "", SizeUnits: 10}
	empty, err := codec.Encode(fit)
	require.NoError(t, err)
	fit.Label = strings.Repeat("L", codec.MaxFrameSize-len(empty)-1) // one more digit in len
	frame, err := codec.Encode(fit)
	require.NoError(t, err)
	assert.Len(t, frame, codec.MaxFrameSize)
}

func TestCodec_RejectsInvalidRequest(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := Codec{}.Encode(Request{OriginID: 1, Label: "x", SizeUnits: size})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
}

// =============================================================================
// Malformed Input
// =============================================================================

func TestCodec_DecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
	}{
		{"empty", []byte("")},
		{"single_field", []byte("12")},
		{"legacy_whitespace_format", []byte("12 FILE_12_1 400")},
		{"missing_checksum", []byte("12 4:FILE 400")},
		{"short_checksum", []byte("12 4:FILE 400 abc")},
		{"uppercase_checksum", []byte("12 4:FILE 400 ABCDEFABCDEFABCD")},
		{"checksum_mismatch", append([]byte("13"), sealed("12 4:FILE 400")[2:]...)},
		{"non_numeric_size", sealed("12 4:FILE abc")},
		{"size_with_extra_field", sealed("12 4:FILE 400 500")},
		{"zero_size", sealed("12 4:FILE 0")},
		{"negative_size", sealed("12 4:FILE -5")},
		{"missing_size", sealed("12 4:FILE")},
		{"non_numeric_origin", sealed("abc 4:FILE 400")},
		{"missing_label", sealed("12")},
		{"missing_length_prefix", sealed("12 FILE 400")},
		{"non_numeric_length", sealed("12 x:FILE 400")},
		{"negative_length", sealed("12 -1:FILE 400")},
		{"length_past_end", sealed("12 99:FILE 400")},
		{"length_too_short", sealed("12 2:FILE 400")},
	}

	codec := Codec{MaxFrameSize: 1024}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.Decode(tt.frame)
			assert.ErrorIs(t, err, ErrMalformedFrame)
			assert.Equal(t, Request{}, got)
		})
	}
}

func TestCodec_DecodeRejectsFrameOverLimit(t *testing.T) {
	frame, err := Codec{}.Encode(Request{OriginID: 1, Label: strings.Repeat("z", 100), SizeUnits: 1})
	require.NoError(t, err)

	_, err = Codec{MaxFrameSize: 32}.Decode(frame)
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkCodec_EncodeDecode(b *testing.B) {
	codec := Codec{MaxFrameSize: 1024}
	req := Request{OriginID: 140245, Label: "FILE_140245_6", SizeUnits: 12345}
	buf := make([]byte, 0, 1024)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		frame, _ := codec.AppendEncode(buf[:0], req)
		_, _ = codec.Decode(frame)
	}
}
