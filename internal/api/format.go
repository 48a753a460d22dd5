package api

import (
	"github.com/tcfw/starchain/pkg/block"
)

type formattedStar struct {
	RA           string `json:"ra"`
	Dec          string `json:"dec"`
	Story        string `json:"story"`
	StoryDecoded string `json:"storyDecoded"`
}

type formattedBody struct {
	Address string        `json:"address"`
	Star    formattedStar `json:"star"`
}

type formattedBlock struct {
	Hash              string        `json:"hash"`
	Height            uint64        `json:"height"`
	Body              formattedBody `json:"body"`
	Time              int64         `json:"time"`
	PreviousBlockHash string        `json:"previousBlockHash"`
}

func formatBlock(b *block.Block) formattedBlock {
	decoded, err := b.Body.Star.DecodeStory()
	if err != nil {
		decoded = ""
	}

	return formattedBlock{
		Hash:   b.Hash,
		Height: b.Height,
		Body: formattedBody{
			Address: b.Body.Address,
			Star: formattedStar{
				RA:           b.Body.Star.RA,
				Dec:          b.Body.Star.Dec,
				Story:        b.Body.Star.Story,
				StoryDecoded: decoded,
			},
		},
		Time:              b.Time,
		PreviousBlockHash: b.PreviousBlockHash,
	}
}
