// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// DECODER TESTS
// =============================================================================

// TestDecoder_GrowingBuffer walks the decoder through a completion stream
// delivered as successive snapshots of the whole body, the way the HTTP
// read loop feeds it.
func TestDecoder_GrowingBuffer(t *testing.T) {
	var d Decoder

	buf := "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n"
	require.Equal(t, "Hi", d.Feed(buf))
	require.Equal(t, "Hi", d.Text())

	buf += "data: {\"choices\":[{\"delta\":{\"content\":\" there\"}}]}\n"
	require.Equal(t, " there", d.Feed(buf))
	require.Equal(t, "Hi there", d.Text())

	buf += "data: [DONE]\n"
	require.Equal(t, "", d.Feed(buf))
	require.Equal(t, "Hi there", d.Text())
	require.True(t, d.Done())
}

// TestDecoder_RefeedIsIdempotent verifies that feeding the same snapshot
// twice contributes nothing the second time.
func TestDecoder_RefeedIsIdempotent(t *testing.T) {
	var d Decoder

	buf := "data: {\"choices\":[{\"delta\":{\"content\":\"once\"}}]}\n"
	require.Equal(t, "once", d.Feed(buf))
	require.Equal(t, "", d.Feed(buf))
	require.Equal(t, "", d.Feed(buf))
	require.Equal(t, "once", d.Text())
}

// TestDecoder_MalformedLineSkipped verifies that one bad line between two
// good ones has no effect on the concatenation.
func TestDecoder_MalformedLineSkipped(t *testing.T) {
	var d Decoder

	buf := "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n" +
		"data: {not json\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n"
	require.Equal(t, "ab", d.Feed(buf))
	require.Equal(t, "ab", d.Text())
	require.False(t, d.Done())
}

// TestDecoder_IgnoresNonEventLines verifies that empty lines, comments,
// and other SSE fields never contribute text.
func TestDecoder_IgnoresNonEventLines(t *testing.T) {
	var d Decoder

	buf := "\n" +
		": keep-alive\n" +
		"event: message\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n" +
		"\n"
	require.Equal(t, "x", d.Feed(buf))
	require.Equal(t, "x", d.Text())
}

// TestDecoder_PartialLineHeldBack verifies that a snapshot ending mid-line
// defers that line until it is completed, and decodes it exactly once.
func TestDecoder_PartialLineHeldBack(t *testing.T) {
	var d Decoder

	full := "data: {\"choices\":[{\"delta\":{\"content\":\"split\"}}]}\n"
	half := full[:20]

	require.Equal(t, "", d.Feed(half))
	require.Equal(t, "", d.Text())

	require.Equal(t, "split", d.Feed(full))
	require.Equal(t, "split", d.Text())
}

// TestDecoder_CRLFLines verifies carriage returns are stripped before the
// payload is parsed.
func TestDecoder_CRLFLines(t *testing.T) {
	var d Decoder

	buf := "data: {\"choices\":[{\"delta\":{\"content\":\"crlf\"}}]}\r\n" +
		"data: [DONE]\r\n"
	require.Equal(t, "crlf", d.Feed(buf))
	require.True(t, d.Done())
}

// TestDecoder_EmptyCompletion verifies a stream that terminates without
// producing any content yields an empty concatenation.
func TestDecoder_EmptyCompletion(t *testing.T) {
	var d Decoder

	require.Equal(t, "", d.Feed("data: [DONE]\n"))
	require.Equal(t, "", d.Text())
	require.True(t, d.Done())
}

// TestDecoder_MultipleDeltasInOneSnapshot verifies all complete lines in
// a single snapshot are decoded in order.
func TestDecoder_MultipleDeltasInOneSnapshot(t *testing.T) {
	var d Decoder

	buf := "data: {\"choices\":[{\"delta\":{\"content\":\"one \"}}]}\n" +
		"data: {\"choices\":[{\"delta\":{}}]}\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"two\"}}]}\n"
	require.Equal(t, "one two", d.Feed(buf))
}
