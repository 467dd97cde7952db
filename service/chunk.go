package service

// Chunk distributes items round-robin across size buckets: item i lands in
// bucket i%size. Only non empty buckets are returned.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	n := min(size, len(items))
	buckets := make([][]T, n)
	for i, item := range items {
		buckets[i%n] = append(buckets[i%n], item)
	}
	return buckets
}
