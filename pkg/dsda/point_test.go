package dsda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint(t *testing.T) {
	p := Point{3, 2}
	q := p.Add(Point{0, -1})
	assert.Equal(t, Point{3, 1}, q)
	assert.Equal(t, Point{3, 2}, p, "Add must not modify the receiver")
	assert.True(t, q.Equal(Point{3, 1}))
	assert.False(t, q.Equal(Point{3, 1, 0}))
	assert.Equal(t, "[3,1]", q.String())
}

func TestParsePoint(t *testing.T) {
	for _, tt := range []struct {
		in  string
		out Point
		err bool
	}{
		{in: "14,1", out: Point{14, 1}},
		{in: "[1, 2, 3]", out: Point{1, 2, 3}},
		{in: " ", out: nil},
		{in: "1,x", err: true},
	} {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParsePoint(tt.in)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.out, p)
		})
	}
}

func TestK2(t *testing.T) {
	dirs := K2{}.Directions(3)
	require.Len(t, dirs, 6)
	for i, d := range dirs {
		assert.Equal(t, i+1, d.ID)
		opposite := dirs[Opposite(d.ID, 3)-1]
		assert.Equal(t, Point{0, 0, 0}, d.Delta.Add(opposite.Delta))
	}
	assert.Equal(t, Point{1, 0, 0}, dirs[0].Delta)
	assert.Equal(t, Point{0, 0, -1}, dirs[5].Delta)
}

func TestFilters(t *testing.T) {
	bounds := BoundsFilter{Lower: []int{1, 1}, Upper: []int{5, 5}}
	assert.True(t, bounds.Allow(Point{5, 1}))
	assert.False(t, bounds.Allow(Point{6, 1}))
	assert.False(t, bounds.Allow(Point{0, 1}))
	assert.False(t, bounds.Allow(Point{1}))

	asym := AsymmetryFilter{}
	assert.True(t, asym.Allow(Point{3, 3}))
	assert.True(t, asym.Allow(Point{3, 1}))
	assert.False(t, asym.Allow(Point{2, 3}))

	_, err := FilterByName("asymmetry")
	require.NoError(t, err)
	_, err = FilterByName("symmetry")
	assert.EqualError(t, err, `unknown neighbor filter "symmetry"`)
}
