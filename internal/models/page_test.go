package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPage_Unmarshal_DRFObject(t *testing.T) {
	t.Parallel()

	raw := `{"count": 3, "next": "http://api/courses/?page=2", "previous": null,
		"results": [{"id": 1, "title": "Go", "price": "12.50", "rating": 4.5}]}`

	var p Page[Course]
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.Equal(t, 3, p.Count)
	require.Equal(t, "http://api/courses/?page=2", p.Next)
	require.Empty(t, p.Previous)
	require.Len(t, p.Results, 1)
	require.Equal(t, Decimal(12.5), p.Results[0].Price)
	require.Equal(t, Decimal(4.5), p.Results[0].Rating)
}

func TestPage_Unmarshal_BareArray(t *testing.T) {
	t.Parallel()

	raw := ` [{"id": 1, "title": "a"}, {"id": 2, "title": "b"}]`

	var p Page[Course]
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	require.Equal(t, 2, p.Count)
	require.Empty(t, p.Next)
	require.Equal(t, "b", p.Results[1].Title)
}

func TestPage_Unmarshal_Broken(t *testing.T) {
	t.Parallel()

	var p Page[Course]
	require.Error(t, json.Unmarshal([]byte(`{"results": "nope"}`), &p))
	require.Error(t, json.Unmarshal([]byte(`[1, 2]`), &p))
}

func TestDecimal_Unmarshal_Table(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name    string
		in      string
		want    Decimal
		wantErr bool
	}{
		{name: "string", in: `"19.99"`, want: 19.99},
		{name: "number", in: `7`, want: 7},
		{name: "null", in: `null`, want: 0},
		{name: "empty_string", in: `""`, want: 0},
		{name: "garbage", in: `"abc"`, wantErr: true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			var d Decimal
			err := json.Unmarshal([]byte(tc.in), &d)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.InDelta(t, float64(tc.want), float64(d), 1e-9)
		})
	}

	require.Equal(t, "19.90", Decimal(19.9).String())
}

func TestTestResult_KeepsRawBody(t *testing.T) {
	t.Parallel()

	raw := `{"score": "80.0", "passed": true, "details": [{"question": 1, "ok": true}]}`

	var r TestResult
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	require.True(t, r.Passed)
	require.Equal(t, Decimal(80), r.Score)
	require.JSONEq(t, raw, string(r.Raw))
}

func TestUser_DisplayName(t *testing.T) {
	t.Parallel()

	var nilUser *User
	require.Equal(t, "", nilUser.DisplayName())
	require.Equal(t, "alice", (&User{Username: "alice"}).DisplayName())
	require.Equal(t, "Alice", (&User{Username: "alice", FirstName: "Alice"}).DisplayName())
	require.Equal(t, "Alice Liddell", (&User{FirstName: "Alice", LastName: "Liddell"}).DisplayName())
}
