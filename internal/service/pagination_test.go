package service

import (
	"math"
	"testing"

	"github.com/textpages-admin/internal/config"
)

func TestNormalizePageQuery(t *testing.T) {
	cfg := config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100}
	cases := []struct {
		page, limit       int
		wantPage, wantLim int
	}{
		{0, 0, 1, 20},
		{-3, 10, 1, 10},
		{2, 500, 2, 100},
		{5, 100, 5, 100},
		{1, 1, 1, 1},
	}
	for _, tc := range cases {
		got := NormalizePageQuery(cfg, tc.page, tc.limit)
		if got.Page != tc.wantPage || got.Limit != tc.wantLim {
			t.Fatalf("normalize(%d,%d) = %+v, want page=%d limit=%d", tc.page, tc.limit, got, tc.wantPage, tc.wantLim)
		}
	}
}

func TestNormalizePageQueryZeroConfig(t *testing.T) {
	got := NormalizePageQuery(config.PaginationConfig{}, 1, 1000)
	if got.Limit != 100 {
		t.Fatalf("expected built-in max 100, got %d", got.Limit)
	}
}

func TestNormalizePageQueryCapsHugePage(t *testing.T) {
	cfg := config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100}
	got := NormalizePageQuery(cfg, math.MaxInt64, 100)
	if got.Page != math.MaxInt32/100+1 {
		t.Fatalf("huge page should be capped, got %d", got.Page)
	}
	offset := int64(got.Page-1) * int64(got.Limit)
	if offset < 0 || offset > math.MaxInt32 {
		t.Fatalf("offset out of range: %d", offset)
	}
}
