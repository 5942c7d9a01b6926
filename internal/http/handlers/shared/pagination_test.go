package shared

import "testing"

func TestNormalizePagination(t *testing.T) {
	cases := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"defaults", 0, 0, 1, DefaultPageSize},
		{"negative_page", -3, 10, 1, 10},
		{"capped", 2, 500, 2, MaxPageSize},
		{"in_range", 3, 50, 3, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, pageSize := NormalizePagination(tc.page, tc.pageSize)
			if page != tc.wantPage || pageSize != tc.wantPageSize {
				t.Fatalf("want (%d,%d) got (%d,%d)", tc.wantPage, tc.wantPageSize, page, pageSize)
			}
		})
	}
}
