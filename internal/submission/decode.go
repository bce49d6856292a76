package submission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"wpp/internal/services"
)

// ErrMalformed reports a payload that is not a JSON submission object.
var ErrMalformed = fmt.Errorf("%w: malformed submission payload", services.ErrValidation)

// Decode parses one JSON submission. Unknown keys are ignored; trailing data
// after the object is rejected.
func Decode(data []byte) (*Submission, error) {
	return DecodeReader(bytes.NewReader(data))
}

// DecodeReader parses one JSON submission from r.
func DecodeReader(r io.Reader) (*Submission, error) {
	dec := json.NewDecoder(r)
	var sub Submission
	if err := dec.Decode(&sub); err != nil {
		return nil, services.Wrap(ErrMalformed, "submission", "decode", "parse json", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, services.Wrap(ErrMalformed, "submission", "decode", "unexpected data after payload", nil)
	}
	return &sub, nil
}

// Encode serializes the submission for the work queue.
func Encode(sub *Submission) ([]byte, error) {
	if sub == nil {
		return nil, services.Wrap(ErrMalformed, "submission", "encode", "nil submission", nil)
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return nil, services.Wrap(ErrMalformed, "submission", "encode", "marshal json", err)
	}
	return data, nil
}
