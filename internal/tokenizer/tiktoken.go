package tokenizer

import (
	"errors"

	"github.com/pkoukk/tiktoken-go"
)

// tiktokenCounter counts BPE tokens with a tiktoken encoding. Special tokens in
// commit text are encoded as ordinary text.
type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter tiktokenCounter) Name() string {
	return counter.name
}

func (counter tiktokenCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
