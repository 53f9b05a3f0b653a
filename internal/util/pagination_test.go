package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                    string
		page, size              int
		wantPage, wantFrom, lim int
	}{
		{name: "defaults", page: 0, size: 0, wantPage: 1, wantFrom: 0, lim: 10},
		{name: "third page", page: 3, size: 20, wantPage: 3, wantFrom: 40, lim: 20},
		{name: "negative page", page: -2, size: 5, wantPage: 1, wantFrom: 0, lim: 5},
		{name: "size over max", page: 2, size: 500, wantPage: 2, wantFrom: 100, lim: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, from, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.lim, limit)
		})
	}
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	assert.EqualValues(t, 0, TotalPages(0, 10))
	assert.EqualValues(t, 1, TotalPages(10, 10))
	assert.EqualValues(t, 2, TotalPages(11, 10))
	assert.EqualValues(t, 0, TotalPages(5, 0))
}
