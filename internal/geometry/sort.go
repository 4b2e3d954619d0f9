package geometry

import (
	"math"
	"sort"
)

// rowBucketHeight groups boxes into visual rows before the left-to-right
// pass. Boxes whose y coordinates differ by less than this land in the same
// row despite small vertical jitter from the detector. A tunable tolerance,
// not a law of nature.
const rowBucketHeight = 30.0

// SortReadingOrder orders boxes top-to-bottom, left-to-right in place.
// The sort is stable: boxes sharing both row bucket and x keep their
// encounter order.
func SortReadingOrder(boxes []TextBox) {
	sort.SliceStable(boxes, func(i, j int) bool {
		rowI := int(math.Floor(boxes[i].Y / rowBucketHeight))
		rowJ := int(math.Floor(boxes[j].Y / rowBucketHeight))
		if rowI != rowJ {
			return rowI < rowJ
		}
		return boxes[i].X < boxes[j].X
	})
}
