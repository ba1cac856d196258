// Package udptransport implements rtp.DatagramTransport over net.UDPConn,
// one socket per channel (data, control), each with its own read goroutine
// handing the raw bytes of every received datagram to the registered handler.
package udptransport

import (
	"context"
	"fmt"
	"net"
	"sync"

	engine "github.com/arzzra/rtpsession/pkg/rtp"
)

const defaultReadBufferSize = 1500 // typical network MTU

// Transport is the default rtp.DatagramTransport implementation.
type Transport struct {
	readBufferSize int
}

// Option configures a Transport.
type Option func(*Transport)

// WithReadBufferSize overrides the per-read buffer size (default 1500).
func WithReadBufferSize(n int) Option {
	return func(t *Transport) { t.readBufferSize = n }
}

// New returns a ready-to-use Transport.
func New(opts ...Option) *Transport {
	t := &Transport{readBufferSize: defaultReadBufferSize}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// BindData implements rtp.DatagramTransport.
func (t *Transport) BindData(localAddr string, onReceive func(net.Addr, []byte)) (engine.Channel, error) {
	return t.bind(localAddr, onReceive)
}

// BindControl implements rtp.DatagramTransport.
func (t *Transport) BindControl(localAddr string, onReceive func(net.Addr, []byte)) (engine.Channel, error) {
	return t.bind(localAddr, onReceive)
}

func (t *Transport) bind(localAddr string, onReceive func(net.Addr, []byte)) (*channel, error) {
	addr, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return nil, fmt.Errorf("udptransport: resolve local address %q: %w", localAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("udptransport: listen on %q: %w", localAddr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := &channel{conn: conn, cancel: cancel}
	ch.wg.Add(1)
	go ch.readLoop(ctx, t.readBufferSize, onReceive)
	return ch, nil
}

// channel is the default rtp.Channel implementation: one bound UDP socket.
type channel struct {
	conn   *net.UDPConn
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once
}

func (c *channel) Send(payload []byte, remote net.Addr) error {
	udpAddr, ok := remote.(*net.UDPAddr)
	if !ok {
		resolved, err := net.ResolveUDPAddr("udp", remote.String())
		if err != nil {
			return fmt.Errorf("udptransport: resolve remote address %q: %w", remote.String(), err)
		}
		udpAddr = resolved
	}
	_, err := c.conn.WriteToUDP(payload, udpAddr)
	return err
}

func (c *channel) LocalAddr() net.Addr { return c.conn.LocalAddr() }

func (c *channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
		c.wg.Wait()
	})
	return err
}

func (c *channel) readLoop(ctx context.Context, bufSize int, onReceive func(net.Addr, []byte)) {
	defer c.wg.Done()
	buf := make([]byte, bufSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, addr, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		if onReceive != nil {
			onReceive(addr, payload)
		}
	}
}
