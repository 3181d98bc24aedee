package rollback

type savedState struct {
	frame    int32
	state    State
	checksum uint64
}

// savedStates is a ring of snapshots indexed by frame.
type savedStates struct {
	cells []savedState
}

func newSavedStates(size int) *savedStates {
	cells := make([]savedState, size)
	for i := range cells {
		cells[i].frame = NullFrame
	}
	return &savedStates{cells: cells}
}

func (s *savedStates) save(frame int32, state State, checksum uint64) {
	s.cells[int(frame)%len(s.cells)] = savedState{
		frame:    frame,
		state:    state,
		checksum: checksum,
	}
}

func (s *savedStates) get(frame int32) (savedState, bool) {
	if frame < 0 {
		return savedState{}, false
	}
	cell := s.cells[int(frame)%len(s.cells)]
	if cell.frame != frame {
		return savedState{}, false
	}
	return cell, true
}

// latestAtOrBefore returns the most recent snapshot taken at or before frame.
func (s *savedStates) latestAtOrBefore(frame int32) (savedState, bool) {
	best := savedState{frame: NullFrame}
	for _, cell := range s.cells {
		if cell.frame == NullFrame || cell.frame > frame {
			continue
		}
		if cell.frame > best.frame {
			best = cell
		}
	}
	return best, best.frame != NullFrame
}
