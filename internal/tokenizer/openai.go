package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// openAICounter counts tokens with a tiktoken byte-pair encoding.
type openAICounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter openAICounter) Name() string {
	return counter.name
}

// CountString encodes input allowing no special tokens, so literal
// "<|endoftext|>" text in a source file is counted as ordinary text.
func (counter openAICounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, fmt.Errorf("tokenizer %q has no tiktoken encoding", counter.name)
	}
	return len(counter.encoding.EncodeOrdinary(input)), nil
}
