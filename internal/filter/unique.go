package filter

import (
	"fmt"

	"github.com/yairfalse/machine/pkg/machine"
)

// NotUniqueError reports that a uniqueness policy failed.
type NotUniqueError struct {
	Count int
}

func (e *NotUniqueError) Error() string {
	return fmt.Sprintf("unique match required but %d matches found", e.Count)
}

// AtMostOne is the listing policy: more than one match fails, zero is fine.
func AtMostOne(count int) error {
	if count > 1 {
		return &NotUniqueError{Count: count}
	}
	return nil
}

// ExactlyOne is the policy for commands acting on a single droplet: any
// count other than one fails.
func ExactlyOne(records []machine.Record) (machine.Record, error) {
	if len(records) != 1 {
		return machine.Record{}, &NotUniqueError{Count: len(records)}
	}
	return records[0], nil
}
