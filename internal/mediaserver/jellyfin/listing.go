package jellyfin

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mmcdole/kinocache/internal/domain"
)

// DecodeItems reads a saved /Items response ({"Items": [...]}) or a bare JSON array of items
func DecodeItems(r io.Reader) ([]Item, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidListing, err)
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var items []Item
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidListing, err)
		}
		return items, nil
	}

	var resp ItemsResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidListing, err)
	}
	return resp.Items, nil
}

// peekNonSpace returns the first non-whitespace byte without consuming it
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			return b[0], nil
		}
		if _, err := br.Discard(1); err != nil {
			return 0, err
		}
	}
}
