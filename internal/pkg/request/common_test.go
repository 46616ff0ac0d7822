package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestPageParamsDefaults(t *testing.T) {
	from, size, err := PageParams{}.Resolve(10)
	require.NoError(t, err)
	assert.Equal(t, 0, from)
	assert.Equal(t, 10, size)
}

func TestPageParamsKeepsUnalignedOffset(t *testing.T) {
	from, size, err := PageParams{From: intPtr(7), Size: intPtr(5)}.Resolve(10)
	require.NoError(t, err)
	assert.Equal(t, 7, from)
	assert.Equal(t, 5, size)
}

func TestPageParamsRejectsInvalidValues(t *testing.T) {
	_, _, err := PageParams{From: intPtr(-1)}.Resolve(10)
	assert.ErrorIs(t, err, ErrNegativeFrom)

	_, _, err = PageParams{Size: intPtr(0)}.Resolve(10)
	assert.ErrorIs(t, err, ErrSizeTooSmall)
}
