package rollback

import "github.com/cbodonnell/goban/pkg/messages"

// InputQueue holds one player's inputs by frame.
// Missing inputs are predicted as "no move" and the queue remembers which
// frames were predicted, so a later confirmation that disagrees can be found.
type InputQueue struct {
	inputs         map[int32]messages.EncodedInput
	predicted      map[int32]struct{}
	lastConfirmed  int32
	firstIncorrect int32
	disconnected   bool
}

func NewInputQueue() *InputQueue {
	return &InputQueue{
		inputs:         make(map[int32]messages.EncodedInput),
		predicted:      make(map[int32]struct{}),
		lastConfirmed:  NullFrame,
		firstIncorrect: NullFrame,
	}
}

// AddInput confirms the input for frame. Frames must be added in order:
// duplicates and frames past a gap are ignored and false is returned.
func (q *InputQueue) AddInput(frame int32, input messages.EncodedInput) bool {
	if q.disconnected || frame != q.lastConfirmed+1 {
		return false
	}
	q.inputs[frame] = input
	q.lastConfirmed = frame

	if _, ok := q.predicted[frame]; ok {
		delete(q.predicted, frame)
		if !input.IsNoMove() && (q.firstIncorrect == NullFrame || frame < q.firstIncorrect) {
			q.firstIncorrect = frame
		}
	}
	return true
}

// Input returns the input to simulate frame with.
func (q *InputQueue) Input(frame int32) (messages.EncodedInput, InputStatus) {
	if frame <= q.lastConfirmed {
		return q.inputs[frame], InputStatusConfirmed
	}
	if q.disconnected {
		return messages.NoMove, InputStatusDisconnected
	}
	q.predicted[frame] = struct{}{}
	return messages.NoMove, InputStatusPredicted
}

// ConfirmedInput returns the input for frame if it can no longer change.
func (q *InputQueue) ConfirmedInput(frame int32) (messages.EncodedInput, bool) {
	if frame <= q.lastConfirmed {
		in, ok := q.inputs[frame]
		return in, ok
	}
	if q.disconnected {
		return messages.NoMove, true
	}
	return messages.NoMove, false
}

// Confirmed returns the confirmed inputs from frame onwards, at most limit of them.
func (q *InputQueue) Confirmed(from int32, limit int) []messages.EncodedInput {
	var inputs []messages.EncodedInput
	for frame := from; frame <= q.lastConfirmed && len(inputs) < limit; frame++ {
		in, ok := q.inputs[frame]
		if !ok {
			break
		}
		inputs = append(inputs, in)
	}
	return inputs
}

func (q *InputQueue) LastConfirmedFrame() int32 {
	return q.lastConfirmed
}

// FirstIncorrectFrame returns the earliest frame whose prediction turned out wrong, or NullFrame.
func (q *InputQueue) FirstIncorrectFrame() int32 {
	return q.firstIncorrect
}

// ResetPrediction forgets predictions from frame onwards, before those frames are simulated again.
func (q *InputQueue) ResetPrediction(from int32) {
	for frame := range q.predicted {
		if frame >= from {
			delete(q.predicted, frame)
		}
	}
	if q.firstIncorrect >= from {
		q.firstIncorrect = NullFrame
	}
}

// Disconnect confirms every future frame as "no move".
func (q *InputQueue) Disconnect() {
	q.disconnected = true
}

func (q *InputQueue) Disconnected() bool {
	return q.disconnected
}

// DiscardBefore drops inputs and predictions older than frame.
func (q *InputQueue) DiscardBefore(frame int32) {
	for f := range q.inputs {
		if f < frame {
			delete(q.inputs, f)
		}
	}
	for f := range q.predicted {
		if f < frame {
			delete(q.predicted, f)
		}
	}
}
