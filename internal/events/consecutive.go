package events

// Consecutive splits ascending sorted indices into maximal runs of consecutive
// integers. The runs do not share memory with indices.
func Consecutive(indices []int) [][]int {
	runs := make([][]int, 0)
	if len(indices) == 0 {
		return runs
	}

	start := 0
	for i := 1; i <= len(indices); i++ {
		if i < len(indices) && indices[i] == indices[i-1]+1 {
			continue
		}
		run := make([]int, i-start)
		copy(run, indices[start:i])
		runs = append(runs, run)
		start = i
	}
	return runs
}

// flaggedIndices returns the positions set in flags, in ascending order.
func flaggedIndices(flags []bool, want bool) []int {
	indices := make([]int, 0)
	for i, flag := range flags {
		if flag == want {
			indices = append(indices, i)
		}
	}
	return indices
}

// sampleTimesteps returns timesteps, or the sample indices when timesteps is nil.
func sampleTimesteps(n int, timesteps []float64) []float64 {
	if timesteps != nil {
		return timesteps
	}
	indices := make([]float64, n)
	for i := range indices {
		indices[i] = float64(i)
	}
	return indices
}
