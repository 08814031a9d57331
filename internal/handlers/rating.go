package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/AnshRaj112/feedback-backend/internal/store"
)

const (
	minRating = 1
	maxRating = 5
)

// RatingInput accepts a rating sent as a JSON number or a numeric string.
type RatingInput struct {
	raw      string
	present  bool
	isString bool
	isBool   bool
}

func (r *RatingInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = RatingInput{}

	switch {
	case bytes.Equal(data, []byte("null")):
		return nil
	case bytes.Equal(data, []byte("false")):
		r.isBool = true
		return nil
	case bytes.Equal(data, []byte("true")):
		r.present, r.isBool = true, true
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		r.raw, r.present, r.isString = s, true, true
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// Objects and arrays are kept and rejected when parsed
		r.raw, r.present = string(data), true
		return nil
	}
	r.raw, r.present = n.String(), true
	return nil
}

// Provided reports whether the rating counts as filled in: absent, null,
// false, 0 and "" do not.
func (r RatingInput) Provided() bool {
	if !r.present {
		return false
	}
	if r.isString {
		return r.raw != ""
	}
	if r.isBool {
		return true
	}
	f, err := strconv.ParseFloat(r.raw, 64)
	return err != nil || f != 0
}

// Parse converts a provided rating to a whole number in [1, 5]. The store
// checks the range again on write.
func (r RatingInput) Parse() (int, error) {
	// true counts as filled in but is not a number
	if r.isBool {
		return 0, store.NewFieldError("rating", "rating must be a number")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(r.raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, store.NewFieldError("rating", "rating must be a number")
	}
	if f != math.Trunc(f) {
		return 0, store.NewFieldError("rating", "rating must be a whole number")
	}
	if f < minRating {
		return 0, store.NewFieldError("rating", fmt.Sprintf("rating must be at least %d", minRating))
	}
	if f > maxRating {
		return 0, store.NewFieldError("rating", fmt.Sprintf("rating must be at most %d", maxRating))
	}
	return int(f), nil
}
