package utils

// BucketQueue is a monotone max-priority queue over small non-negative
// positions. Buckets are indexed by position, so push and pop are O(1)
// amortized as long as every pushed position is no greater than the last
// popped one. Duplicate positions collapse into one entry.
type BucketQueue struct {
	buckets    []bool
	current    int
	totalCount int
}

func NewBucketQueue(maxPos int) *BucketQueue {
	return &BucketQueue{
		buckets: make([]bool, maxPos+1),
	}
}

func (bq *BucketQueue) Len() int {
	return bq.totalCount
}

// Reset empties the queue and makes room for positions up to maxPos.
func (bq *BucketQueue) Reset(maxPos int) {
	if maxPos >= len(bq.buckets) {
		bq.buckets = make([]bool, maxPos+1)
	} else {
		for i := 0; i <= bq.current && i < len(bq.buckets); i++ {
			bq.buckets[i] = false
		}
	}
	bq.current = 0
	bq.totalCount = 0
}

func (bq *BucketQueue) Push(pos int) {
	if pos >= len(bq.buckets) {
		newBuckets := make([]bool, pos+1)
		copy(newBuckets, bq.buckets)
		bq.buckets = newBuckets
	}

	if bq.buckets[pos] {
		return
	}
	bq.buckets[pos] = true
	bq.totalCount++

	if bq.totalCount == 1 || pos > bq.current {
		bq.current = pos
	}
}

// Pop removes and returns the largest position.
func (bq *BucketQueue) Pop() (int, bool) {
	if bq.totalCount == 0 {
		return 0, false
	}

	for !bq.buckets[bq.current] {
		bq.current--
	}

	pos := bq.current
	bq.buckets[pos] = false
	bq.totalCount--

	return pos, true
}
