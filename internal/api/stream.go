// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// SSE STREAM DECODING
// =============================================================================

// streamChunk is one JSON payload from the completion stream. Only the
// delta content is used; other fields the server may send are ignored.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Decoder incrementally decodes the server-sent event stream produced by
// the completion endpoint.
//
// The decoder is fed snapshots of a growing buffer: each call to Feed
// receives the entire response body read so far, and the decoder processes
// only the bytes past what it has already seen. Feeding the same snapshot
// twice is a no-op, so callers can re-feed after reads that returned no
// new data without duplicating text.
//
// Each complete line is handled independently. Lines carrying a "data: "
// prefix hold either a JSON chunk or the "[DONE]" terminator; anything
// that fails to parse is skipped and decoding continues with the next
// line. A partial line at the end of a snapshot is left unconsumed until
// a later snapshot completes it.
type Decoder struct {
	seen int
	text strings.Builder
	done bool
}

// Feed processes the unseen suffix of buf and returns the delta text
// extracted from it. buf must be the full accumulated response body; if
// it is shorter than a previous snapshot, Feed returns "" without
// consuming anything.
func (d *Decoder) Feed(buf string) string {
	if len(buf) <= d.seen {
		return ""
	}

	chunk := buf[d.seen:]

	// Only consume through the last complete line. The remainder is a
	// line still being written and will arrive again, completed, in a
	// later snapshot.
	nl := strings.LastIndexByte(chunk, '\n')
	if nl < 0 {
		return ""
	}
	d.seen += nl + 1
	chunk = chunk[:nl]

	var delta strings.Builder
	for _, line := range strings.Split(chunk, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimSpace(line[len("data: "):])
		if payload == "[DONE]" {
			// Terminator carries no text. Keep scanning; the server
			// is free to send trailing keep-alive lines.
			d.done = true
			continue
		}

		var c streamChunk
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			// Malformed line. Skip it; the stream as a whole is
			// still good.
			continue
		}
		for _, choice := range c.Choices {
			delta.WriteString(choice.Delta.Content)
		}
	}

	d.text.WriteString(delta.String())
	return delta.String()
}

// Text returns all delta content decoded so far, in arrival order.
func (d *Decoder) Text() string {
	return d.text.String()
}

// Done reports whether the "[DONE]" terminator has been seen.
func (d *Decoder) Done() bool {
	return d.done
}
