package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TransferState int

const (
	StateNotStarted TransferState = iota
	StateProbingSize
	StateTransferring
	StateSucceeded
	StateFailed
)

func (s TransferState) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateProbingSize:
		return "probing-size"
	case StateTransferring:
		return "transferring"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s TransferState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// allowed transitions; everything else is rejected
var transitions = map[TransferState][]TransferState{
	StateNotStarted:   {StateProbingSize},
	StateProbingSize:  {StateTransferring, StateFailed},
	StateTransferring: {StateSucceeded, StateFailed},
}

// Transfer is the single download handled by one process run.
type Transfer struct {
	ID               string
	SourceURL        string
	DestinationPath  string
	TotalBytes       int64
	BytesTransferred int64
	State            TransferState
	StartTime        time.Time
	totalSet         bool
}

func NewTransfer(sourceURL, destinationPath string) *Transfer {
	return &Transfer{
		ID:              uuid.NewString(),
		SourceURL:       sourceURL,
		DestinationPath: destinationPath,
		TotalBytes:      UnknownSize,
		State:           StateNotStarted,
	}
}

func (t *Transfer) Advance(next TransferState) error {
	for _, s := range transitions[t.State] {
		if s == next {
			if next == StateTransferring {
				t.StartTime = time.Now()
			}
			t.State = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.State, next)
}

// SetTotal fixes the declared size. It can only be called once.
func (t *Transfer) SetTotal(total int64) error {
	if t.totalSet {
		return fmt.Errorf("total size already set to %d", t.TotalBytes)
	}
	if total < 0 {
		total = UnknownSize
	}
	t.TotalBytes = total
	t.totalSet = true
	return nil
}

func (t *Transfer) SizeKnown() bool {
	return t.TotalBytes >= 0
}

func (t *Transfer) Add(n int) {
	if n > 0 {
		t.BytesTransferred += int64(n)
	}
}
