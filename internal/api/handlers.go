package api

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/tcfw/starchain/pkg/admission"
	"github.com/tcfw/starchain/pkg/block"
	"github.com/tcfw/starchain/pkg/storage"
)

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": msg,
	})
}

type validationRequest struct {
	Address string `json:"address"`
}

func (a *API) requestValidation(c *gin.Context) {
	req := &validationRequest{}
	if err := c.ShouldBindJSON(req); err != nil || req.Address == "" {
		fail(c, http.StatusBadRequest, "Error: Fill the address parameter")
		return
	}

	ch, err := a.pool.Request(req.Address)
	if err != nil {
		a.log.WithError(err).Error("issuing validation request")
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, ch)
}

type signatureRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

func (a *API) validateSignature(c *gin.Context) {
	req := &signatureRequest{}
	if err := c.ShouldBindJSON(req); err != nil || req.Address == "" {
		fail(c, http.StatusBadRequest, "Error: Fill the address parameter")
		return
	}
	if req.Signature == "" {
		fail(c, http.StatusBadRequest, "Error: Fill the signature parameter")
		return
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(req.Signature, "0x"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Error: signature must be hex encoded")
		return
	}

	st, err := a.pool.Validate(req.Address, sig)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"registerStar": true,
			"status":       st,
		})
	case errors.Is(err, admission.ErrSignature):
		c.JSON(http.StatusUnauthorized, gin.H{
			"registerStar": false,
			"status":       st,
		})
	default:
		fail(c, http.StatusNotFound, err.Error())
	}
}

type blockRequest struct {
	Address string      `json:"address"`
	Star    *block.Star `json:"star"`
}

func (a *API) addBlock(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if n, err := countTopLevelKey(raw, "star"); err != nil || n != 1 {
		fail(c, http.StatusBadRequest, "Error: wrong number of stars. Please, send only one")
		return
	}

	req := &blockRequest{}
	if err := json.Unmarshal(raw, req); err != nil || req.Address == "" || req.Star == nil {
		fail(c, http.StatusBadRequest, "Error: Fill the address parameter")
		return
	}

	if err := a.pool.AuthorizeStar(req.Address, *req.Star); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	body := block.Body{
		Address: req.Address,
		Star: block.Star{
			RA:    req.Star.RA,
			Dec:   req.Star.Dec,
			Story: hex.EncodeToString([]byte(req.Star.Story)),
		},
	}

	b, err := a.ledger.Append(c.Request.Context(), body)
	if err != nil {
		// the admission record stays live so the append can be retried
		a.log.WithError(err).Error("appending block")
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	a.pool.Consume(req.Address)

	c.JSON(http.StatusOK, formatBlock(b))
}

func (a *API) blockByHeight(c *gin.Context) {
	height, err := strconv.ParseUint(c.Param("height"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Error: height must be a non-negative integer")
		return
	}

	b, err := a.ledger.BlockByHeight(c.Request.Context(), height)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, formatBlock(b))
}

func (a *API) stars(c *gin.Context) {
	selector := c.Param("selector")

	switch {
	case strings.HasPrefix(selector, "address:"):
		blocks, err := a.ledger.BlocksByAddress(c.Request.Context(), strings.TrimPrefix(selector, "address:"))
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}

		out := make([]formattedBlock, 0, len(blocks))
		for _, b := range blocks {
			out = append(out, formatBlock(b))
		}

		c.JSON(http.StatusOK, out)

	case strings.HasPrefix(selector, "hash:"):
		b, err := a.ledger.BlockByHash(c.Request.Context(), strings.TrimPrefix(selector, "hash:"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				fail(c, http.StatusBadRequest, "Sorry, no block found")
				return
			}
			fail(c, http.StatusBadRequest, err.Error())
			return
		}

		c.JSON(http.StatusOK, formatBlock(b))

	default:
		fail(c, http.StatusBadRequest, "Error: lookup must be address:<addr> or hash:<hash>")
	}
}

// countTopLevelKey reports how many times key appears at the top level
// of a JSON object, catching duplicate keys that unmarshaling would
// silently collapse.
func countTopLevelKey(raw []byte, key string) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	t, err := dec.Token()
	if err != nil {
		return 0, err
	}
	if d, ok := t.(json.Delim); !ok || d != '{' {
		return 0, errors.New("body must be a JSON object")
	}

	count := 0
	depth := 0
	expectKey := true

	for dec.More() || depth > 0 {
		t, err := dec.Token()
		if err != nil {
			return 0, err
		}

		switch v := t.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				depth++
				expectKey = false
			case '}', ']':
				depth--
			}
		case string:
			if depth == 0 && expectKey {
				if v == key {
					count++
				}
				expectKey = false
				continue
			}
		}

		if depth == 0 {
			// value consumed; next token at this depth is a key
			expectKey = true
		}
	}

	return count, nil
}
