// Package shortcode maps recipe identifiers to short, salted, reversible
// codes for share links. Codes are derived from the identifier and the salt
// alone, so resolving a link needs no stored mapping.
package shortcode

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/speps/go-hashids/v2"
)

// Codec encodes positive identifiers with a fixed salt and minimum length.
// It is safe for concurrent use.
type Codec struct {
	h *hashids.HashID
}

// New builds a codec. The same salt and minLength must be used for the whole
// lifetime of a deployment, otherwise previously issued links stop resolving.
func New(salt string, minLength int) (*Codec, error) {
	if minLength < 0 {
		return nil, fmt.Errorf("short code min length must not be negative, got %d", minLength)
	}

	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("short code init: %w", err)
	}

	return &Codec{h: h}, nil
}

// Encode returns the code for id. id must be positive.
func (c *Codec) Encode(id int64) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("short code: id must be positive, got %d", id)
	}
	return c.h.EncodeInt64([]int64{id})
}

// Decode reverses Encode. Anything Encode could not have produced yields
// common.ErrDecodeFailure.
func (c *Codec) Decode(code string) (id int64, err error) {
	if code == "" || strings.IndexFunc(code, notInAlphabet) >= 0 {
		return 0, common.ErrDecodeFailure
	}

	defer func() {
		if r := recover(); r != nil {
			id, err = 0, common.ErrDecodeFailure
		}
	}()

	ids, err := c.h.DecodeInt64WithError(code)
	if err != nil || len(ids) != 1 || ids[0] <= 0 {
		return 0, common.ErrDecodeFailure
	}

	// several strings can decode to the same number; only the canonical one is valid
	canonical, err := c.h.EncodeInt64(ids)
	if err != nil || canonical != code {
		return 0, common.ErrDecodeFailure
	}

	return ids[0], nil
}

func notInAlphabet(r rune) bool {
	return !strings.ContainsRune(hashids.DefaultAlphabet, r)
}
