package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 10, Params{Page: 2, PageSize: 10}.Offset())
	assert.Equal(t, 15, Params{Page: 4, PageSize: 5}.Offset())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 4, TotalPages(7, 2))
}

func TestTotalPagesDegenerateInput(t *testing.T) {
	assert.Equal(t, 0, TotalPages(5, 0))
	assert.Equal(t, 0, TotalPages(-1, 10))
}
