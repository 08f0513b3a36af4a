package stream

import (
	"encoding/json"
	"fmt"
	"sync"
)

// registry holds typed handlers in registration order. Dispatch is
// synchronous and panic-isolated per handler: one panicking handler is
// reported to error handlers and the rest still run.
type registry struct {
	mu     sync.RWMutex
	nextID uint64

	price []handler[PriceUpdate]
	trade []handler[TradeUpdate]
	book  []handler[OrderbookUpdate]
	errs  []handler[error]
}

type handler[T any] struct {
	id uint64
	fn func(T)
}

func add[T any](r *registry, list *[]handler[T], fn func(T)) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	*list = append(*list, handler[T]{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, h := range *list {
				if h.id == id {
					*list = append((*list)[:i:i], (*list)[i+1:]...)
					break
				}
			}
		})
	}
}

func dispatchTo[T any](r *registry, list *[]handler[T], update T, onPanic func(any)) {
	r.mu.RLock()
	snapshot := append([]handler[T](nil), (*list)...)
	r.mu.RUnlock()

	for _, h := range snapshot {
		func() {
			defer func() {
				if p := recover(); p != nil {
					onPanic(p)
				}
			}()
			h.fn(update)
		}()
	}
}

// notifyError delivers err to all error handlers. Panics in error
// handlers are swallowed; there is nowhere left to report them.
func (r *registry) notifyError(err error) {
	dispatchTo(r, &r.errs, err, func(any) {})
}

// OnPrice registers a handler for price updates. The returned function
// removes the registration and is safe to call more than once.
func (c *Client) OnPrice(fn func(PriceUpdate)) func() {
	return add(&c.handlers, &c.handlers.price, fn)
}

// OnTrade registers a handler for trade updates.
func (c *Client) OnTrade(fn func(TradeUpdate)) func() {
	return add(&c.handlers, &c.handlers.trade, fn)
}

// OnOrderbook registers a handler for orderbook snapshots.
func (c *Client) OnOrderbook(fn func(OrderbookUpdate)) func() {
	return add(&c.handlers, &c.handlers.book, fn)
}

// OnError registers a handler for connection and dispatch errors.
func (c *Client) OnError(fn func(error)) func() {
	return add(&c.handlers, &c.handlers.errs, fn)
}

// dispatch routes one server frame to the typed handlers for its
// channel tag. Frames are handled strictly in arrival order.
func (c *Client) dispatch(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.handlers.notifyError(fmt.Errorf("malformed frame: %w", err))
		return
	}

	onPanic := func(p any) {
		c.handlers.notifyError(fmt.Errorf("handler panic on %s frame: %v", env.Channel, p))
	}

	switch env.Channel {
	case ChannelPrices:
		var update PriceUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			c.handlers.notifyError(fmt.Errorf("decode price frame: %w", err))
			return
		}
		dispatchTo(&c.handlers, &c.handlers.price, update, onPanic)

	case ChannelTrades:
		var update TradeUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			c.handlers.notifyError(fmt.Errorf("decode trade frame: %w", err))
			return
		}
		dispatchTo(&c.handlers, &c.handlers.trade, update, onPanic)

	case ChannelOrderbook:
		var update OrderbookUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			c.handlers.notifyError(fmt.Errorf("decode orderbook frame: %w", err))
			return
		}
		dispatchTo(&c.handlers, &c.handlers.book, update, onPanic)

	default:
		// Unknown channels are ignored so protocol additions do not
		// break older clients.
	}
}
