package dsda

// Direction is a move of a neighborhood. IDs start at 1 and are stable for
// a given dimension.
type Direction struct {
	ID    int
	Delta Point
}

// Neighborhood generates the moves available from any point of an
// n-dimensional lattice.
type Neighborhood interface {
	Name() string
	Directions(n int) []Direction
}

// K2 is the neighborhood of the 2n signed unit vectors. Direction i moves
// coordinate i-1 by +1 and direction i+n moves it by -1.
type K2 struct{}

func (K2) Name() string {
	return "k2"
}

func (K2) Directions(n int) []Direction {
	dirs := make([]Direction, 0, 2*n)
	for _, sign := range []int{1, -1} {
		for i := 0; i < n; i++ {
			delta := make(Point, n)
			delta[i] = sign
			dirs = append(dirs, Direction{ID: len(dirs) + 1, Delta: delta})
		}
	}
	return dirs
}

// Opposite returns the id of the K2 direction opposite to id.
func Opposite(id, n int) int {
	if id > n {
		return id - n
	}
	return id + n
}
