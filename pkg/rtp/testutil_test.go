package rtp

import (
	"fmt"
	"net"
	"sync"
)

// memAddr is a minimal net.Addr usable as a map/comparison key in tests
// without touching a real socket.
type memAddr string

func (a memAddr) Network() string { return "mem" }
func (a memAddr) String() string  { return string(a) }

// memChannel is an in-memory rtp.Channel: Send records the datagram instead
// of putting it on a wire, and a peer can be wired up to deliver it straight
// into the other side's onReceive callback.
type memChannel struct {
	local     memAddr
	mu        sync.Mutex
	sent      []sentDatagram
	closed    bool
	onReceive func(net.Addr, []byte)
	deliverTo map[memAddr]*memChannel // remote addr -> channel to deliver into
}

type sentDatagram struct {
	payload []byte
	remote  net.Addr
}

func newMemChannel(local memAddr, onReceive func(net.Addr, []byte)) *memChannel {
	return &memChannel{local: local, onReceive: onReceive, deliverTo: map[memAddr]*memChannel{}}
}

func (c *memChannel) Send(payload []byte, remote net.Addr) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("memChannel: send on closed channel")
	}
	c.sent = append(c.sent, sentDatagram{payload: payload, remote: remote})
	target := c.deliverTo[memAddr(remote.String())]
	c.mu.Unlock()

	if target != nil {
		target.receive(c.local, payload)
	}
	return nil
}

func (c *memChannel) receive(origin net.Addr, payload []byte) {
	c.mu.Lock()
	cb := c.onReceive
	c.mu.Unlock()
	if cb != nil {
		cb(origin, payload)
	}
}

func (c *memChannel) LocalAddr() net.Addr { return c.local }

func (c *memChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *memChannel) sentDatagrams() []sentDatagram {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sentDatagram, len(c.sent))
	copy(out, c.sent)
	return out
}

// memTransport is an in-memory rtp.DatagramTransport: every bind just
// allocates a memChannel keyed by the requested address.
type memTransport struct {
	mu       sync.Mutex
	channels map[string]*memChannel
}

func newMemTransport() *memTransport {
	return &memTransport{channels: map[string]*memChannel{}}
}

func (t *memTransport) BindData(localAddr string, onReceive func(net.Addr, []byte)) (Channel, error) {
	return t.bind(localAddr, onReceive)
}

func (t *memTransport) BindControl(localAddr string, onReceive func(net.Addr, []byte)) (Channel, error) {
	return t.bind(localAddr, onReceive)
}

func (t *memTransport) bind(localAddr string, onReceive func(net.Addr, []byte)) (Channel, error) {
	if localAddr == "" {
		localAddr = fmt.Sprintf("mem:%d", len(t.channels))
	}
	ch := newMemChannel(memAddr(localAddr), onReceive)
	t.mu.Lock()
	t.channels[localAddr] = ch
	t.mu.Unlock()
	return ch, nil
}

// link makes a.Send(..., bAddr) deliver directly into b, and vice versa.
func link(a, b *memChannel) {
	a.mu.Lock()
	a.deliverTo[b.local] = b
	a.mu.Unlock()
	b.mu.Lock()
	b.deliverTo[a.local] = a
	b.mu.Unlock()
}

// identityCodec is a PacketCodec that "encodes" by gob-free struct copy: it
// wraps the packet in a tiny tagged envelope kept entirely in memory, so
// tests can assert on decoded field values without depending on the real
// wire-format codec package (which would create an import cycle from
// pkg/rtp/codec back into pkg/rtp).
type identityCodec struct{}

type envelope struct {
	data     *DataPacket
	control  CompoundControlPacket
	isData   bool
}

func (identityCodec) EncodeData(p *DataPacket) ([]byte, error) {
	cp := *p
	return encodeEnvelope(envelope{data: &cp, isData: true}), nil
}

func (identityCodec) DecodeData(b []byte) (*DataPacket, error) {
	env, err := decodeEnvelope(b)
	if err != nil {
		return nil, err
	}
	if !env.isData || env.data == nil {
		return nil, fmt.Errorf("identityCodec: not a data packet")
	}
	return env.data, nil
}

func (identityCodec) EncodeControl(c CompoundControlPacket) ([]byte, error) {
	return encodeEnvelope(envelope{control: c, isData: false}), nil
}

func (identityCodec) DecodeControl(b []byte) (CompoundControlPacket, error) {
	env, err := decodeEnvelope(b)
	if err != nil {
		return nil, err
	}
	if env.isData {
		return nil, fmt.Errorf("identityCodec: not a control packet")
	}
	return env.control, nil
}

// encodeEnvelope/decodeEnvelope sidestep real marshaling by stashing the Go
// value behind a process-local registry keyed by a byte token; sufficient
// for in-process tests that never actually cross a wire.
var (
	envelopeMu       sync.Mutex
	envelopeRegistry = map[uint64]envelope{}
	envelopeCounter  uint64
)

func encodeEnvelope(e envelope) []byte {
	envelopeMu.Lock()
	defer envelopeMu.Unlock()
	envelopeCounter++
	id := envelopeCounter
	envelopeRegistry[id] = e
	return []byte(fmt.Sprintf("env:%d", id))
}

func decodeEnvelope(b []byte) (envelope, error) {
	var id uint64
	if _, err := fmt.Sscanf(string(b), "env:%d", &id); err != nil {
		return envelope{}, fmt.Errorf("identityCodec: malformed envelope: %w", err)
	}
	envelopeMu.Lock()
	defer envelopeMu.Unlock()
	e, ok := envelopeRegistry[id]
	if !ok {
		return envelope{}, fmt.Errorf("identityCodec: unknown envelope %d", id)
	}
	return e, nil
}
