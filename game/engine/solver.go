package engine

import (
	"errors"
	"fmt"
)

var ErrUnsolvable = errors.New("puzzle is unsolvable")

type board [SlideTileCount]int8

type searchNode struct {
	parent board
	moved  int8 // index of the tile slid to reach this board, -1 at the root
}

// Solve returns a shortest sequence of tile indices to pass to SlideTile that
// takes tiles to the solved configuration. A solved board yields an empty slice.
func Solve(tiles []int) ([]int, error) {
	if err := validateTiles(tiles); err != nil {
		return nil, err
	}
	if !IsSolvable(tiles) {
		return nil, fmt.Errorf("%w: odd inversion count", ErrUnsolvable)
	}

	var start, goal board
	for i, t := range tiles {
		start[i] = int8(t)
	}
	for i, t := range SolvedTiles() {
		goal[i] = int8(t)
	}

	visited := map[board]searchNode{start: {moved: -1}}
	queue := []board{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == goal {
			return unwind(visited, current), nil
		}

		empty := emptyIndex(current)
		for _, idx := range SlideNeighbors(empty) {
			next := current
			next[empty], next[idx] = next[idx], next[empty]
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = searchNode{parent: current, moved: int8(idx)}
			queue = append(queue, next)
		}
	}
	return nil, ErrUnsolvable
}

func unwind(visited map[board]searchNode, end board) []int {
	var path []int
	for b := end; ; {
		node := visited[b]
		if node.moved < 0 {
			break
		}
		path = append(path, int(node.moved))
		b = node.parent
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func emptyIndex(b board) int {
	for i, v := range b {
		if v == 0 {
			return i
		}
	}
	return -1
}
