package memutils

import "math"

// Statistics counts the buffers a component has produced and the bytes they
// occupy.
type Statistics struct {
	BufferCount int
	BufferBytes int
}

func (s *Statistics) Clear() {
	s.BufferCount = 0
	s.BufferBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BufferCount += other.BufferCount
	s.BufferBytes += other.BufferBytes
}

// DetailedStatistics additionally tracks the extremes of buffer sizes seen,
// which is what you want in a debug dump when hunting a heap hog.
type DetailedStatistics struct {
	Statistics
	BufferSizeMin int
	BufferSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.BufferSizeMin = math.MaxInt
	s.BufferSizeMax = 0
}

func (s *DetailedStatistics) AddBuffer(size int) {
	s.BufferCount++
	s.BufferBytes += size

	if size < s.BufferSizeMin {
		s.BufferSizeMin = size
	}

	if size > s.BufferSizeMax {
		s.BufferSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)

	if other.BufferSizeMin < s.BufferSizeMin {
		s.BufferSizeMin = other.BufferSizeMin
	}

	if other.BufferSizeMax > s.BufferSizeMax {
		s.BufferSizeMax = other.BufferSizeMax
	}
}
