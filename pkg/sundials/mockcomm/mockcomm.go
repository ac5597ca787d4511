package mockcomm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sunml/sundials-go/pkg/sundials/nvector/parallel"
)

// Group is a set of in-process ranks that exchange messages over channels.
type Group struct {
	size int

	mu sync.Mutex
	q  map[queueKey]chan []float64
}

// New returns a group of size ranks.
func New(size int) *Group {
	if size < 1 {
		size = 1
	}
	return &Group{size: size, q: make(map[queueKey]chan []float64)}
}

// Size returns the number of ranks.
func (g *Group) Size() int { return g.size }

type queueKey struct {
	from, to int
	seq      uint64
}

func (g *Group) slot(key queueKey) chan []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := g.q[key]
	if ch == nil {
		ch = make(chan []float64, 1)
		g.q[key] = ch
	}
	return ch
}

func (g *Group) deliver(ctx context.Context, key queueKey, payload []float64) error {
	ch := g.slot(key)
	msg := append([]float64(nil), payload...)
	select {
	case ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Group) await(ctx context.Context, key queueKey) ([]float64, error) {
	ch := g.slot(key)
	select {
	case msg := <-ch:
		g.mu.Lock()
		delete(g.q, key)
		g.mu.Unlock()
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Comm is one rank's view of a Group. A Comm must be used by one goroutine
// at a time, like an MPI communicator.
type Comm struct {
	group *Group
	rank  int

	mu      sync.Mutex
	sendSeq map[int]uint64
	recvSeq map[int]uint64
}

// Comm returns the communicator for rank.
func (g *Group) Comm(rank int) *Comm {
	return &Comm{group: g, rank: rank, sendSeq: map[int]uint64{}, recvSeq: map[int]uint64{}}
}

func (c *Comm) Rank() int { return c.rank }
func (c *Comm) Size() int { return c.group.size }

func (c *Comm) peer(r int) error {
	if r == c.rank {
		return errors.New("mockcomm: message to self")
	}
	if r < 0 || r >= c.group.size {
		return fmt.Errorf("mockcomm: unknown rank %d", r)
	}
	return nil
}

// Send delivers msg to rank to. Messages between a pair of ranks arrive in
// send order.
func (c *Comm) Send(ctx context.Context, to int, msg []float64) error {
	if err := c.peer(to); err != nil {
		return err
	}
	c.mu.Lock()
	seq := c.sendSeq[to]
	c.mu.Unlock()
	if err := c.group.deliver(ctx, queueKey{from: c.rank, to: to, seq: seq}, msg); err != nil {
		return err
	}
	c.mu.Lock()
	c.sendSeq[to]++
	c.mu.Unlock()
	return nil
}

// Receive waits for the next message from rank from.
func (c *Comm) Receive(ctx context.Context, from int) ([]float64, error) {
	if err := c.peer(from); err != nil {
		return nil, err
	}
	c.mu.Lock()
	seq := c.recvSeq[from]
	c.mu.Unlock()
	msg, err := c.group.await(ctx, queueKey{from: from, to: c.rank, seq: seq})
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.recvSeq[from]++
	c.mu.Unlock()
	return msg, nil
}

// AllReduceFloat combines v across every rank with op. It must be called by
// all ranks of the group.
func (c *Comm) AllReduceFloat(ctx context.Context, v float64, op parallel.Op) (float64, error) {
	if c.group.size == 1 {
		return v, nil
	}
	if c.rank != 0 {
		if err := c.Send(ctx, 0, []float64{v}); err != nil {
			return 0, err
		}
		msg, err := c.Receive(ctx, 0)
		if err != nil {
			return 0, err
		}
		return msg[0], nil
	}
	acc := v
	for r := 1; r < c.group.size; r++ {
		msg, err := c.Receive(ctx, r)
		if err != nil {
			return 0, err
		}
		acc = combine(op, acc, msg[0])
	}
	for r := 1; r < c.group.size; r++ {
		if err := c.Send(ctx, r, []float64{acc}); err != nil {
			return 0, err
		}
	}
	return acc, nil
}

// AllReduceInt is AllReduceFloat for integers. Values must fit a float64
// mantissa.
func (c *Comm) AllReduceInt(ctx context.Context, v int64, op parallel.Op) (int64, error) {
	out, err := c.AllReduceFloat(ctx, float64(v), op)
	return int64(out), err
}

func combine(op parallel.Op, a, b float64) float64 {
	switch op {
	case parallel.OpMax:
		return math.Max(a, b)
	case parallel.OpMin:
		return math.Min(a, b)
	}
	return a + b
}

// Run calls fn once per rank, each in its own goroutine, and returns the
// first error. The context passed to fn is cancelled when any rank fails.
func (g *Group) Run(ctx context.Context, fn func(ctx context.Context, c *Comm) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	for r := range g.size {
		c := g.Comm(r)
		eg.Go(func() error { return fn(ctx, c) })
	}
	return eg.Wait()
}

var _ parallel.Comm = (*Comm)(nil)
