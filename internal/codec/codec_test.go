package codec

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestDecode_Fallbacks(t *testing.T) {
	fallback := []doc{{Name: "fallback"}}

	cases := map[string]string{
		"empty":     "",
		"blank":     "   \n",
		"malformed": "{not valid json",
		"null":      "null",
		"wrongType": `{"name":"x"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, fallback, Decode(raw, fallback))
		})
	}
}

func TestDecode_Valid(t *testing.T) {
	got := Decode(`[{"name":"a","count":2}]`, []doc(nil))
	require.Equal(t, []doc{{Name: "a", Count: 2}}, got)
}

func TestTryDecode_ReportsFailure(t *testing.T) {
	_, ok := TryDecode[[]doc]("{not valid json")
	require.False(t, ok)

	out, ok := TryDecode[[]doc]("[]")
	require.True(t, ok)
	require.Empty(t, out)
}

func TestEncode(t *testing.T) {
	raw, ok := Encode([]doc{{Name: "a", Count: 1}})
	require.True(t, ok)
	require.JSONEq(t, `[{"name":"a","count":1}]`, raw)

	raw, ok = Encode(math.NaN())
	require.False(t, ok)
	require.Empty(t, raw)

	_, ok = Encode(make(chan int))
	require.False(t, ok)
}

func TestDecodeRecords_SkipsRejectedElements(t *testing.T) {
	decode := func(raw json.RawMessage) (doc, bool) {
		d, ok := TryDecode[doc](string(raw))
		return d, ok && d.Name != ""
	}

	records, skipped, ok := DecodeRecords(`[{"name":"a","count":1},{"name":"b","count":"x"},null,{"name":"c"}]`, decode)
	require.True(t, ok)
	require.Equal(t, 2, skipped)
	require.Equal(t, []doc{{Name: "a", Count: 1}, {Name: "c"}}, records)

	records, skipped, ok = DecodeRecords(`[]`, decode)
	require.True(t, ok)
	require.Zero(t, skipped)
	require.Empty(t, records)

	for _, raw := range []string{"", "null", "{not json", `{"name":"a"}`} {
		_, _, ok := DecodeRecords(raw, decode)
		require.False(t, ok, raw)
	}
}

func TestReviveTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	got, ok := ReviveTime(json.RawMessage(`"2024-05-01T10:00:00.000Z"`))
	require.True(t, ok)
	require.True(t, want.Equal(got))

	got, ok = ReviveTime(json.RawMessage(`1714557600000`))
	require.True(t, ok)
	require.True(t, want.Equal(got))

	for _, raw := range []string{`""`, `"yesterday"`, `null`, ``, `true`} {
		_, ok := ReviveTime(json.RawMessage(raw))
		require.False(t, ok, raw)
	}
}
