package engine

// idmap maintains the bijection between a caller-supplied external id and
// the graph-assigned internal id for one entity kind (course, professor, or
// time block).
type idmap struct {
	toInternal map[uint64]int
	toExternal map[int]uint64
}

func newIDMap() *idmap {
	return &idmap{
		toInternal: make(map[uint64]int),
		toExternal: make(map[int]uint64),
	}
}

func (m *idmap) bind(external uint64, internal int) {
	m.toInternal[external] = internal
	m.toExternal[internal] = external
}

func (m *idmap) internal(external uint64) (int, bool) {
	id, ok := m.toInternal[external]
	return id, ok
}

func (m *idmap) external(internal int) (uint64, bool) {
	id, ok := m.toExternal[internal]
	return id, ok
}
