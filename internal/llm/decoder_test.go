package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openAIStream = "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\" world\"}}]}\n" +
	"data: [DONE]\n"

func TestDecoder_OpenAIStyle(t *testing.T) {
	var d StreamDecoder
	d.Write([]byte(openAIStream))

	assert.Equal(t, "Hello world", d.Text())
	assert.True(t, d.Done())
}

func TestDecoder_GeminiStyle(t *testing.T) {
	var d StreamDecoder
	d.Write([]byte("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Bon\"}]}}]}\n"))
	d.Write([]byte("data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"jour\"}]}}]}\n"))

	assert.Equal(t, "Bonjour", d.Text())
	assert.False(t, d.Done())
}

// Feeding the stream one byte at a time must produce the same text as one
// big write: the chunk boundary is never allowed to matter.
func TestDecoder_ByteByByteInvariance(t *testing.T) {
	var d StreamDecoder
	for i := 0; i < len(openAIStream); i++ {
		d.Write([]byte{openAIStream[i]})
	}

	assert.Equal(t, "Hello world", d.Text())
	assert.True(t, d.Done())
}

func TestDecoder_MidLineSplit(t *testing.T) {
	var d StreamDecoder
	d.Write([]byte("data: {\"choices\":[{\"delta\":{\"con"))
	assert.Equal(t, "", d.Text())

	d.Write([]byte("tent\":\"abc\"}}]}\n"))
	assert.Equal(t, "abc", d.Text())
}

func TestDecoder_SkipsCommentsAndBlanks(t *testing.T) {
	var d StreamDecoder
	d.Write([]byte(": keep-alive\n\n\r\ndata: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n"))

	assert.Equal(t, "ok", d.Text())
}

func TestDecoder_CRLFLines(t *testing.T) {
	var d StreamDecoder
	d.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"crlf\"}}]}\r\ndata: [DONE]\r\n"))

	assert.Equal(t, "crlf", d.Text())
	assert.True(t, d.Done())
}

func TestDecoder_IgnoresNonDataFields(t *testing.T) {
	var d StreamDecoder
	d.Write([]byte("event: message\nid: 42\ndata: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n"))

	assert.Equal(t, "x", d.Text())
}

// Data after the terminator is consumed but never extracted.
func TestDecoder_NothingAfterDone(t *testing.T) {
	var d StreamDecoder
	d.Write([]byte("data: [DONE]\n\ndata: {\"choices\":[{\"delta\":{\"content\":\"late\"}}]}\n"))

	assert.Equal(t, "", d.Text())
	assert.True(t, d.Done())
}

func TestDecoder_OnTokenReceivesAccumulator(t *testing.T) {
	var tokens []string
	var accs []string
	d := StreamDecoder{OnToken: func(tok, acc string) {
		tokens = append(tokens, tok)
		accs = append(accs, acc)
	}}

	d.Write([]byte(openAIStream))

	assert.Equal(t, []string{"Hel", "lo", " world"}, tokens)
	assert.Equal(t, []string{"Hel", "Hello", "Hello world"}, accs)
}

func TestDecoder_EmptyDeltaProducesNoToken(t *testing.T) {
	calls := 0
	d := StreamDecoder{OnToken: func(string, string) { calls++ }}
	d.Write([]byte("data: {\"choices\":[{\"delta\":{}}]}\n"))

	assert.Zero(t, calls)
	assert.Equal(t, "", d.Text())
}

func TestDecoder_Consume(t *testing.T) {
	var d StreamDecoder
	err := d.Consume(context.Background(), strings.NewReader(openAIStream))

	require.NoError(t, err)
	assert.Equal(t, "Hello world", d.Text())
	assert.True(t, d.Done())
}

func TestDecoder_ConsumeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var d StreamDecoder
	err := d.Consume(ctx, strings.NewReader(openAIStream))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "", d.Text())
}
