package engine

import "fmt"

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.Row-to.Row) + abs(from.Col-to.Col)
}

// FormatElapsed renders seconds as MM:SS
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// IsSolvable reports whether a 3x3 board can reach the solved configuration.
// On an odd-width board that holds exactly when the inversion count, ignoring
// the empty slot, is even.
func IsSolvable(tiles []int) bool {
	if validateTiles(tiles) != nil {
		return false
	}
	return inversions(tiles)%2 == 0
}

func inversions(tiles []int) int {
	n := 0
	for i := 0; i < len(tiles); i++ {
		if tiles[i] == 0 {
			continue
		}
		for j := i + 1; j < len(tiles); j++ {
			if tiles[j] != 0 && tiles[j] < tiles[i] {
				n++
			}
		}
	}
	return n
}

// shuffle is a Fisher-Yates shuffle driven by r
func shuffle(r Rand, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, r.IntN(i+1))
	}
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
