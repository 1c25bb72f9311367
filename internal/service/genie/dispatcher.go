package genie

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
)

// Dispatcher drives single turns against the Holder's session. Two variants
// share the same underlying handle: a blocking call returning the full reply,
// and a streaming call reporting the accumulated text chunk by chunk.
type Dispatcher struct {
	holder *Holder
}

// NewDispatcher binds a dispatcher to a session holder.
func NewDispatcher(holder *Holder) *Dispatcher {
	return &Dispatcher{holder: holder}
}

// SendTurn sends the whole message and blocks until the provider returns the
// complete reply. An empty provider result is replaced by the in-character
// fallback; a provider failure invalidates the session and surfaces as a
// *ProviderError.
func (d *Dispatcher) SendTurn(ctx context.Context, text string) (string, error) {
	session, err := d.holder.EnsureSession(ctx)
	if err != nil {
		return "", err
	}

	response, err := session.run.Invoke(ctx, session.input(text))
	if err != nil {
		d.resetSession(err)
		return "", &ProviderError{Err: err}
	}

	reply := response.Content
	if strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}

	session.remember(text, reply)
	return reply, nil
}

// SendTurnStreaming sends the message and reports every chunk through onChunk,
// each call carrying the total accumulated text so far, in strict arrival
// order. Provider failures never escape this boundary: the stream resolves to
// the in-character error string (delivered as one final onChunk call) and the
// session is reset so the next turn starts clean. Only a configuration failure
// returns a non-nil error.
func (d *Dispatcher) SendTurnStreaming(ctx context.Context, text string, onChunk func(string)) (string, error) {
	session, err := d.holder.EnsureSession(ctx)
	if err != nil {
		return "", err
	}

	stream, err := session.run.Stream(ctx, session.input(text))
	if err != nil {
		return d.resolveFailure(onChunk, err), nil
	}
	defer stream.Close()

	var accumulator strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return d.resolveFailure(onChunk, recvErr), nil
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		accumulator.WriteString(chunk.Content)
		if onChunk != nil {
			onChunk(accumulator.String())
		}
	}

	reply := accumulator.String()
	if strings.TrimSpace(reply) == "" {
		// Stream ended without yielding anything: no chunk calls were made,
		// but the caller still gets a reply.
		reply = FallbackReply
	}

	session.remember(text, reply)
	return reply, nil
}

// resolveFailure converts a provider failure into the in-character error reply.
// The pending bubble in the UI must resolve to something, so the error string
// is delivered both as a final chunk and as the return value.
func (d *Dispatcher) resolveFailure(onChunk func(string), err error) string {
	d.resetSession(err)
	if onChunk != nil {
		onChunk(ProviderErrorReply)
	}
	return ProviderErrorReply
}

// resetSession conservatively invalidates on every provider failure: error
// classification is not observable at this layer, and a quota-exhausted or
// corrupted session must never be reused.
func (d *Dispatcher) resetSession(err error) {
	log.Printf("[genie] provider failure, resetting session: %v", err)
	d.holder.Invalidate()
}
