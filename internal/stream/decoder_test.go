package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader hands out one predefined chunk per Read call, the way a
// network body delivers data in arbitrary pieces.
type chunkReader struct {
	chunks [][]byte
	err    error
}

func newChunkReader(chunks ...string) *chunkReader {
	r := &chunkReader{}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func frame(t *testing.T, content string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"delta": map[string]any{"content": content}}},
	})
	require.NoError(t, err)
	return "data: " + string(payload) + "\n"
}

func collect(t *testing.T, chunks ...string) (string, error) {
	t.Helper()
	return Collect(context.Background(), NewDecoder(newChunkReader(chunks...)), nil)
}

func TestCollect_SplitJSONAcrossChunks(t *testing.T) {
	text, err := collect(t,
		`data: {"choices":[{"delta":{"content":"Hel`,
		"lo\"}}]}\n\ndata: [DONE]\n",
	)
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
}

func TestCollect_ChunkBoundaryInvariance(t *testing.T) {
	body := ": keep-alive\n" +
		`data: {"choices":[{"delta":{"role":"assistant"}}]}` + "\n" +
		frame(t, "Good ") +
		"\r\n" +
		strings.TrimSuffix(frame(t, "structure, "), "\n") + "\r\n" +
		frame(t, "but the résumé point — café — needs 例子.") +
		"event: ping\n" +
		frame(t, " Done.") +
		"data: [DONE]\n"

	whole, err := collect(t, body)
	require.NoError(t, err)
	require.Equal(t, "Good structure, but the résumé point — café — needs 例子. Done.", whole)

	t.Run("two chunks at every offset", func(t *testing.T) {
		for i := 1; i < len(body); i++ {
			got, err := collect(t, body[:i], body[i:])
			require.NoError(t, err, "split at %d", i)
			require.Equal(t, whole, got, "split at %d", i)
		}
	})

	t.Run("single byte chunks", func(t *testing.T) {
		chunks := make([]string, 0, len(body))
		for i := 0; i < len(body); i++ {
			chunks = append(chunks, body[i:i+1])
		}
		got, err := collect(t, chunks...)
		require.NoError(t, err)
		assert.Equal(t, whole, got)
	})

	t.Run("three chunks", func(t *testing.T) {
		for i := 1; i < len(body)-1; i += 7 {
			for j := i + 1; j < len(body); j += 11 {
				got, err := collect(t, body[:i], body[i:j], body[j:])
				require.NoError(t, err)
				require.Equal(t, whole, got, "split at %d/%d", i, j)
			}
		}
	})
}

func TestCollect_MultiByteCharacterAcrossReads(t *testing.T) {
	body := frame(t, "é") + "data: [DONE]\n"
	i := strings.Index(body, "é") + 1 // between the two bytes of é

	text, err := collect(t, body[:i], body[i:])
	require.NoError(t, err)
	assert.Equal(t, "é", text)
}

func TestCollect_StopsAtSentinel(t *testing.T) {
	text, err := collect(t, frame(t, "A")+"data: [DONE]\n"+frame(t, "B"))
	require.NoError(t, err)
	assert.Equal(t, "A", text)
}

func TestCollect_IgnoresNonPayloadLines(t *testing.T) {
	text, err := collect(t,
		": comment\n",
		"\n",
		"id: 7\n",
		`data:{"choices":[{"delta":{"content":"no space"}}]}`+"\n",
		frame(t, "kept"),
		`data: {"choices":[]}`+"\n",
		`data: {"object":"chat.completion.chunk"}`+"\n",
		"data: [DONE]\n",
	)
	require.NoError(t, err)
	assert.Equal(t, "kept", text)
}

func TestCollect_EndOfInputWithoutSentinel(t *testing.T) {
	t.Run("flushes a final unterminated frame", func(t *testing.T) {
		text, err := collect(t, frame(t, "one "), strings.TrimSuffix(frame(t, "two"), "\n"))
		require.NoError(t, err)
		assert.Equal(t, "one two", text)
	})

	t.Run("discards a dangling incomplete line", func(t *testing.T) {
		text, err := collect(t, frame(t, "kept"), `data: {"choices":[{"delta":{"con`)
		require.NoError(t, err)
		assert.Equal(t, "kept", text)
	})
}

func TestCollect_MalformedFrame(t *testing.T) {
	t.Run("joins a payload cut by a stray newline", func(t *testing.T) {
		text, err := collect(t,
			`data: {"choices":[{"delta":{"content":"Hel`+"\n",
			`lo"}}]}`+"\n\n",
			"data: [DONE]\n",
		)
		require.NoError(t, err)
		assert.Equal(t, "Hello", text)
	})

	t.Run("waits for the continuation line to arrive", func(t *testing.T) {
		text, err := collect(t,
			`data: {"choices":[{"delta":{"content":"Hel`+"\n"+`lo"`,
			"}}]}\n",
			"data: [DONE]\n",
		)
		require.NoError(t, err)
		assert.Equal(t, "Hello", text)
	})

	t.Run("is never surfaced and later frames survive", func(t *testing.T) {
		text, err := collect(t,
			"data: {broken\n\n",
			frame(t, "after"),
			"data: [DONE]\n",
		)
		require.NoError(t, err)
		assert.Equal(t, "after", text)
	})
}

func TestCollect_EmptyResponse(t *testing.T) {
	_, err := collect(t, "data: [DONE]\n")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = collect(t, frame(t, "  "), frame(t, "\n"))
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = collect(t)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestCollect_ProgressiveDeltas(t *testing.T) {
	var seen []string
	d := NewDecoder(newChunkReader(frame(t, "a"), frame(t, "")+frame(t, "b"), "data: [DONE]\n"))

	text, err := Collect(context.Background(), d, func(delta string) { seen = append(seen, delta) })
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
	assert.Equal(t, []string{"a", "b"}, seen)

	_, err = d.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF, "decoder is not restartable")
}

func TestCollect_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDecoder(newChunkReader(frame(t, "Hel"), frame(t, "lo"), "data: [DONE]\n"))
	text, err := Collect(ctx, d, func(string) { cancel() })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Hel", text)

	_, err = d.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestCollect_TransportError(t *testing.T) {
	r := newChunkReader(frame(t, "partial"))
	r.err = errors.New("connection reset")

	text, err := Collect(context.Background(), NewDecoder(r), nil)
	assert.EqualError(t, err, "connection reset")
	assert.Equal(t, "partial", text)
}

func TestOpen(t *testing.T) {
	respond := func(status int, body string) *http.Response {
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
	}

	testCases := []struct {
		name        string
		resp        *http.Response
		wantStatus  int
		wantMessage string
	}{
		{name: "JSON error field", resp: respond(http.StatusTooManyRequests, `{"error":"Daily AI limit reached."}`), wantStatus: 429, wantMessage: "Daily AI limit reached."},
		{name: "nested JSON error", resp: respond(http.StatusUnauthorized, `{"error":{"message":"invalid api key"}}`), wantStatus: 401, wantMessage: "invalid api key"},
		{name: "raw text body", resp: respond(http.StatusBadGateway, "upstream down\n"), wantStatus: 502, wantMessage: "upstream down"},
		{name: "empty body", resp: respond(http.StatusInternalServerError, ""), wantStatus: 500, wantMessage: "AI request failed (500)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Open(tc.resp)
			assert.Nil(t, d)

			var reqErr *RequestFailedError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tc.wantStatus, reqErr.Status)
			assert.Equal(t, tc.wantMessage, reqErr.Message)
		})
	}

	t.Run("no body", func(t *testing.T) {
		_, err := Open(&http.Response{StatusCode: http.StatusOK, Body: http.NoBody})
		assert.ErrorIs(t, err, ErrStreamUnavailable)
	})

	t.Run("success", func(t *testing.T) {
		d, err := Open(respond(http.StatusOK, frame(t, "ok")))
		require.NoError(t, err)
		text, err := Collect(context.Background(), d, nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", text)
	})
}
