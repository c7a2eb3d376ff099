// Package hashid obfuscates numeric entry ids into short public strings.
package hashid

import (
	"errors"
	"fmt"

	"github.com/speps/go-hashids/v2"
)

// ErrInvalidID is returned for strings that do not decode to exactly one
// positive id.
var ErrInvalidID = errors.New("invalid id")

// Codec encodes and decodes ids with a fixed salt. It is safe for
// concurrent use.
type Codec struct {
	h *hashids.HashID
}

func New(salt string, minLength int) (*Codec, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = minLength

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to create hashid codec: %w", err)
	}

	return &Codec{h: h}, nil
}

func (c *Codec) Encode(id int64) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidID, id)
	}

	encoded, err := c.h.EncodeInt64([]int64{id})
	if err != nil {
		return "", fmt.Errorf("failed to encode id %d: %w", id, err)
	}
	return encoded, nil
}

// Decode returns the id behind encoded. Any decoding problem is reported
// as ErrInvalidID.
func (c *Codec) Decode(encoded string) (int64, error) {
	if encoded == "" {
		return 0, ErrInvalidID
	}

	numbers, err := c.h.DecodeInt64WithError(encoded)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	if len(numbers) != 1 || numbers[0] <= 0 {
		return 0, ErrInvalidID
	}
	return numbers[0], nil
}
