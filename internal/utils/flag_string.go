package utils

import (
	"sort"
	"strings"
)

type FlagConstant interface {
	~int32 | ~uint32 | ~int64 | ~uint64
}

// FlagStringMapping turns registered bitmask values into pipe-delimited
// strings. Flags are printed in ascending bit order; unregistered bits are
// silently skipped.
type FlagStringMapping[T FlagConstant] struct {
	names map[T]string
	bits  []T
}

func NewFlagStringMapping[T FlagConstant]() FlagStringMapping[T] {
	return FlagStringMapping[T]{names: make(map[T]string)}
}

func (m *FlagStringMapping[T]) Register(flag T, name string) {
	if _, ok := m.names[flag]; !ok {
		m.bits = append(m.bits, flag)
		sort.Slice(m.bits, func(i, j int) bool { return m.bits[i] < m.bits[j] })
	}
	m.names[flag] = name
}

func (m *FlagStringMapping[T]) FlagsToString(flags T) string {
	var sb strings.Builder

	for _, bit := range m.bits {
		if flags&bit == 0 {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("|")
		}
		sb.WriteString(m.names[bit])
	}

	return sb.String()
}
