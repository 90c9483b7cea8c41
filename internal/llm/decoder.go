package llm

import (
	"context"
	"encoding/json"
	"io"
	"strings"
)

// chunk is the union of the two provider-native incremental payload shapes.
type chunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *chunk) token() string {
	if len(c.Choices) > 0 && c.Choices[0].Delta.Content != "" {
		return c.Choices[0].Delta.Content
	}
	if len(c.Candidates) > 0 && len(c.Candidates[0].Content.Parts) > 0 {
		return c.Candidates[0].Content.Parts[0].Text
	}
	return ""
}

// StreamDecoder incrementally decodes a text/event-stream of provider chunks
// into an accumulated assistant message. Bytes may arrive split at arbitrary
// boundaries, including mid-line: a data line that fails to parse as JSON is
// treated as an incomplete fragment and pushed back onto the buffer until
// more bytes arrive. Parse failures are the resync mechanism, never errors.
type StreamDecoder struct {
	buffer string
	acc    strings.Builder
	done   bool

	// OnToken, when set, is invoked for every extracted token with the full
	// accumulated text so far. Consumers replace their displayed content with
	// the accumulator rather than appending.
	OnToken func(token, accumulated string)
}

// Write feeds raw bytes into the decoder.
func (d *StreamDecoder) Write(p []byte) {
	d.buffer += string(p)
	d.drain()
}

func (d *StreamDecoder) drain() {
	for {
		i := strings.IndexByte(d.buffer, '\n')
		if i < 0 {
			return
		}
		line := d.buffer[:i]
		d.buffer = d.buffer[i+1:]

		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			// Stop extracting, but keep consuming: trailing blank or
			// whitespace-only lines after the terminator are tolerated.
			d.done = true
			continue
		}
		if d.done {
			continue
		}

		var ch chunk
		if err := json.Unmarshal([]byte(payload), &ch); err != nil {
			// Incomplete fragment split across network packets: put the raw
			// line back and wait for the rest.
			d.buffer = line + "\n" + d.buffer
			return
		}
		if tok := ch.token(); tok != "" {
			d.acc.WriteString(tok)
			if d.OnToken != nil {
				d.OnToken(tok, d.acc.String())
			}
		}
	}
}

// Text returns the full accumulated assistant text.
func (d *StreamDecoder) Text() string {
	return d.acc.String()
}

// Done reports whether the [DONE] terminator was seen.
func (d *StreamDecoder) Done() bool {
	return d.done
}

// Consume reads r to EOF, feeding the decoder. The context is checked
// between reads so a cancellation stops the loop promptly.
func (d *StreamDecoder) Consume(ctx context.Context, r io.Reader) error {
	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			d.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
