package palm

import "testing"

func TestNormalizeEpoch(t *testing.T) {
	tests := []struct {
		name string
		raw  uint32
		want int64
	}{
		{name: "exactly at delta", raw: epochDelta, want: 0},
		{name: "one below delta", raw: epochDelta - 1, want: epochDelta - 1},
		{name: "zero", raw: 0, want: 0},
		{name: "above delta", raw: epochDelta + 1_000_000, want: 1_000_000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeEpoch(tc.raw); got != tc.want {
				t.Fatalf("normalizeEpoch(%d) = %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestEpochDateRendering(t *testing.T) {
	ctx := newParseContext(Options{})
	got, ok := epochDate(ctx, uint64(epochDelta))
	if !ok {
		t.Fatal("epochDate failed")
	}
	if got != "1970:01:01 00:00:00" {
		t.Fatalf("epochDate(delta) = %v", got)
	}
}
