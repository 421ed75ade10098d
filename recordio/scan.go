package recordio

import (
	"fmt"
)

// Find reads forward until a record whose payload contains label and
// returns it, leaving the Reader positioned after that record. label must be
// a string, matched as its UTF-8 bytes, or a []byte. Reaching the end of the
// stream without a match returns false and no error.
func (r *Reader) Find(label any) (*Record, bool, error) {
	var pattern []byte
	switch l := label.(type) {
	case string:
		pattern = []byte(l)
	case []byte:
		pattern = l
	default:
		return nil, false, fmt.Errorf("%w: got %T", ErrInvalidLabel, label)
	}

	for rec, err := range r.Records() {
		if err != nil {
			return nil, false, err
		}
		if rec.Contains(pattern) {
			return rec, true, nil
		}
	}
	return nil, false, nil
}

// RecordLengths drains the Reader and returns the payload length of every
// remaining record in file order.
func (r *Reader) RecordLengths() ([]int, error) {
	lengths := make([]int, 0, 16)
	for rec, err := range r.Records() {
		if err != nil {
			return lengths, err
		}
		lengths = append(lengths, rec.Len())
	}
	return lengths, nil
}
