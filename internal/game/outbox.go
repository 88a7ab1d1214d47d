// internal/game/outbox.go
package game

// Outbox is the bounded outbound queue for one connection. The manager pushes
// marshaled frames without ever blocking; the connection's write pump drains
// C until the channel closes.
//
// send and close are only ever called from the owning manager's goroutine,
// so the dead flag needs no synchronization.
type Outbox struct {
	ch   chan []byte
	dead bool
}

// DefaultOutboxSize bounds how far a slow client may fall behind before it
// is disconnected.
const DefaultOutboxSize = 32

func NewOutbox(size int) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	return &Outbox{ch: make(chan []byte, size)}
}

// C is the stream of frames for the write pump. It is closed when the
// manager drops the connection.
func (o *Outbox) C() <-chan []byte {
	return o.ch
}

// send queues one frame. A full queue kills the outbox: a client that cannot
// keep up is disconnected rather than allowed to stall the session.
func (o *Outbox) send(data []byte) bool {
	if o.dead {
		return false
	}
	select {
	case o.ch <- data:
		return true
	default:
		o.close()
		return false
	}
}

func (o *Outbox) close() {
	if o.dead {
		return
	}
	o.dead = true
	close(o.ch)
}
