package utils

import "elevbank/src/types"

// ForEachCall is a helper function that reduces indentation when visiting every hall call slot,
// floor by floor, up before down.
func ForEachCall(maxFloor int, action func(floor int, dir types.Direction)) {
	for floor := 0; floor <= maxFloor; floor++ {
		for _, dir := range types.Directions {
			action(floor, dir)
		}
	}
}

func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
