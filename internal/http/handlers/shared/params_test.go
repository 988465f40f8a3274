package shared

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParamsIntClampsToInt32(t *testing.T) {
	params := Params{
		"small":    float64(42),
		"huge":     float64(1e300),
		"negative": float64(-1e20),
		"fraction": float64(1.5),
		"text":     "99999999999999999999",
		"textNeg":  "-99999999999999999999",
		"number":   json.Number("1e40"),
		"plain":    " 7 ",
		"junk":     "7x",
	}
	cases := map[string]int{
		"small":    42,
		"huge":     math.MaxInt32,
		"negative": math.MinInt32,
		"fraction": 0,
		"text":     math.MaxInt32,
		"textNeg":  math.MinInt32,
		"number":   math.MaxInt32,
		"plain":    7,
		"junk":     0,
		"missing":  0,
	}
	for key, want := range cases {
		if got := params.Int(key); got != want {
			t.Fatalf("Int(%q) = %d, want %d", key, got, want)
		}
	}
	if id := params.ID("negative"); id != 0 {
		t.Fatalf("negative id should be 0, got %d", id)
	}
}
