package server

import (
	"context"
	"fmt"
	"iter"

	"github.com/gorilla/websocket"
	"github.com/zeusync/movingmnist/internal/core/dataset"
	"github.com/zeusync/movingmnist/pkg/encoding"
)

// Client reads batches from a /batches endpoint.
type Client struct {
	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// Batches dials url and yields decoded batches until the server closes the
// stream normally. Any other failure is yielded once and ends the sequence.
func (c Client) Batches(ctx context.Context, url string) iter.Seq2[dataset.Batch, error] {
	return func(yield func(dataset.Batch, error) bool) {
		dialer := c.Dialer
		if dialer == nil {
			dialer = websocket.DefaultDialer
		}

		conn, resp, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			if resp != nil {
				err = fmt.Errorf("dial %s: %s: %w", url, resp.Status, err)
			}
			yield(dataset.Batch{}, err)
			return
		}
		defer func() { _ = conn.Close() }()
		stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
		defer stop()

		for {
			kind, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					return
				}
				if ctxErr := ctx.Err(); ctxErr != nil {
					err = ctxErr
				}
				yield(dataset.Batch{}, err)
				return
			}
			if kind != websocket.BinaryMessage {
				continue
			}

			batch, err := encoding.Decode[dataset.Batch](data)
			if !yield(batch, err) || err != nil {
				return
			}
		}
	}
}
