package inference

import (
	"github.com/go-go-golems/nexus/pkg/conversation"
	"github.com/rs/zerolog/log"
	"github.com/tiktoken-go/tokenizer"
)

// TokenCounter estimates the prompt size of a request for the request record.
type TokenCounter interface {
	CountTokens(req *conversation.Request) int
}

type TiktokenCounter struct{}

func NewTiktokenCounter() *TiktokenCounter {
	return &TiktokenCounter{}
}

func (t *TiktokenCounter) codec(model string) (tokenizer.Codec, error) {
	c, err := tokenizer.ForModel(tokenizer.Model(model))
	if err == nil {
		return c, nil
	}
	return tokenizer.Get(tokenizer.Cl100kBase)
}

// CountTokens returns 0 when no codec is available; counting is informational only.
func (t *TiktokenCounter) CountTokens(req *conversation.Request) int {
	if req == nil {
		return 0
	}
	codec, err := t.codec(req.Model)
	if err != nil {
		log.Debug().Err(err).Str("model", req.Model).Msg("no tokenizer for model")
		return 0
	}
	total := 0
	for _, msg := range req.Messages {
		ids, _, err := codec.Encode(msg.Content)
		if err != nil {
			log.Debug().Err(err).Msg("could not encode message")
			continue
		}
		total += len(ids)
	}
	return total
}

var _ TokenCounter = (*TiktokenCounter)(nil)
