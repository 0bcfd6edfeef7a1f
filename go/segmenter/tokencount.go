package segmenter

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultTokenCounter is the segmenter's default TokenCounter: a
// BPE-style tokenizer (cl100k_base, the encoding used by the GPT-3.5/4
// family) via github.com/pkoukk/tiktoken-go, matching the spec's "the
// default uses a BPE-style tokenizer". If the encoding can't be
// loaded (e.g. no network access to fetch its vocabulary on first
// use), Count falls back to a conservative chars/4 estimate rather
// than failing segmentation.
type DefaultTokenCounter struct{}

var (
	tiktokenOnce sync.Once
	tiktokenEnc  *tiktoken.Tiktoken
)

func loadEncoding() *tiktoken.Tiktoken {
	tiktokenOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			tiktokenEnc = enc
		}
	})
	return tiktokenEnc
}

// Count returns the BPE token count of text, or a chars/4 estimate if
// the tokenizer's vocabulary couldn't be loaded.
func (DefaultTokenCounter) Count(text string) uint32 {
	if enc := loadEncoding(); enc != nil {
		return uint32(len(enc.Encode(text, nil, nil)))
	}
	return uint32(len(text)/4 + 1)
}
