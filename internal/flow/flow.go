// Package flow is the illustrative circulation pipeline: information
// packets are injected into a bounded arterial queue, a heartbeat meters
// dispatch to organ worker pools, and callers await results with a
// best-effort timeout. There is no ordering guarantee between workers and
// no cancellation propagation beyond the circulation's own context.
package flow

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hcm-labs/hcm/internal/analyze"
)

// #region config

// Config sizes the circulation. Every queue is bounded.
type Config struct {
	HeartRate       int           // beats per minute driving dispatch
	ArterialCap     int           // injected-packet queue capacity
	OrganQueueCap   int           // per-organ queue capacity
	WorkersPerOrgan int           // worker pool size per organ
	BeatBatch       int           // packets dispatched per systole
	AwaitTimeout    time.Duration // default Await timeout
}

// DefaultConfig returns a small, bounded circulation.
func DefaultConfig() Config {
	return Config{
		HeartRate:       75,
		ArterialCap:     1000,
		OrganQueueCap:   50,
		WorkersPerOrgan: 2,
		BeatBatch:       10,
		AwaitTimeout:    10 * time.Second,
	}
}

// #endregion config

// #region packet

// Packet is one unit of information moving through the circulation.
type Packet struct {
	ID          string
	Destination string
	Content     analyze.Content
	InjectedAt  time.Time
}

// Outcome is the processed result delivered to Await.
type Outcome struct {
	PacketID string
	Organ    string
	Insight  string
	Analysis *analyze.Analysis
	Err      error
	Elapsed  time.Duration
}

// Handle lets the injector await its packet's outcome.
type Handle struct {
	PacketID string
	done     chan Outcome
}

// #endregion packet

// #region vitals

// Vitals is a snapshot of circulation counters.
type Vitals struct {
	Beats     int
	Injected  int
	Processed int
	Dropped   int
	Failed    int
	PerOrgan  map[string]int
}

// #endregion vitals

// #region organ

// processFn turns a packet into an insight tag, optionally with an analysis.
type processFn func(Packet) (string, *analyze.Analysis, error)

type organ struct {
	name    string
	queue   chan dispatched
	process processFn
}

type dispatched struct {
	packet Packet
	done   chan Outcome
}

// #endregion organ

// #region circulation

// Circulation owns the arterial queue, the organs, and the heartbeat loop.
// All shared counters are mutex-guarded.
type Circulation struct {
	config   Config
	arterial chan dispatched
	organs   map[string]*organ

	mu     sync.Mutex
	vitals Vitals

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a circulation with the standard organ set.
func New(config Config) *Circulation {
	if config.HeartRate <= 0 {
		config.HeartRate = DefaultConfig().HeartRate
	}
	if config.BeatBatch <= 0 {
		config.BeatBatch = DefaultConfig().BeatBatch
	}
	if config.AwaitTimeout <= 0 {
		config.AwaitTimeout = DefaultConfig().AwaitTimeout
	}

	c := &Circulation{
		config:   config,
		arterial: make(chan dispatched, max(config.ArterialCap, 1)),
		organs:   make(map[string]*organ),
	}
	c.vitals.PerOrgan = make(map[string]int)

	add := func(name string, fn processFn) {
		c.organs[name] = &organ{
			name:    name,
			queue:   make(chan dispatched, max(config.OrganQueueCap, 1)),
			process: fn,
		}
	}
	add("brain", processBrain)
	add("heart", tagOnly("heart_insight"))
	add("lungs", tagOnly("lungs_insight"))
	add("liver", processLiver)
	add("kidneys", tagOnly("kidneys_insight"))

	return c
}

// Start launches the heartbeat loop and organ workers. The circulation
// stops when ctx is cancelled or Stop is called.
func (c *Circulation) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	for _, org := range c.organs {
		for i := 0; i < max(c.config.WorkersPerOrgan, 1); i++ {
			c.wg.Add(1)
			go c.organWorker(ctx, org)
		}
	}

	c.wg.Add(1)
	go c.heartbeat(ctx)
}

// Stop cancels the circulation and waits for workers to drain.
func (c *Circulation) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// #endregion circulation

// #region heartbeat

// heartbeat meters dispatch: each systole moves up to BeatBatch packets
// from the arterial queue into their destination organ's queue.
func (c *Circulation) heartbeat(ctx context.Context) {
	defer c.wg.Done()

	period := time.Minute / time.Duration(c.config.HeartRate)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.vitals.Beats++
			c.mu.Unlock()
			c.systole(ctx)
		}
	}
}

func (c *Circulation) systole(ctx context.Context) {
	for i := 0; i < c.config.BeatBatch; i++ {
		select {
		case d := <-c.arterial:
			c.route(ctx, d)
		default:
			return
		}
	}
}

func (c *Circulation) route(ctx context.Context, d dispatched) {
	org, ok := c.organs[d.packet.Destination]
	if !ok {
		org = c.organs["kidneys"] // default filtering
	}
	select {
	case org.queue <- d:
	case <-ctx.Done():
	default:
		// Organ saturated: drop with cause, count it, tell the caller.
		c.mu.Lock()
		c.vitals.Dropped++
		c.mu.Unlock()
		log.Printf("[FLOW] dropped packet %s: organ %s queue full", d.packet.ID, org.name)
		c.deliver(d, Outcome{
			PacketID: d.packet.ID,
			Organ:    org.name,
			Err:      fmt.Errorf("organ %s queue full", org.name),
		})
	}
}

// #endregion heartbeat

// #region workers

func (c *Circulation) organWorker(ctx context.Context, org *organ) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-org.queue:
			start := time.Now()
			insight, analysis, err := org.process(d.packet)

			c.mu.Lock()
			if err != nil {
				c.vitals.Failed++
			} else {
				c.vitals.Processed++
				c.vitals.PerOrgan[org.name]++
			}
			c.mu.Unlock()

			if err != nil {
				log.Printf("[FLOW] organ %s failed packet %s: %v", org.name, d.packet.ID, err)
			}
			c.deliver(d, Outcome{
				PacketID: d.packet.ID,
				Organ:    org.name,
				Insight:  insight,
				Analysis: analysis,
				Err:      err,
				Elapsed:  time.Since(start),
			})
		}
	}
}

// deliver hands the outcome to the awaiting caller without blocking a
// worker on an abandoned handle.
func (c *Circulation) deliver(d dispatched, out Outcome) {
	select {
	case d.done <- out:
	default:
	}
}

// #endregion workers

// #region inject-await

// Inject queues a packet for the given destination organ. A full arterial
// queue rejects the packet immediately rather than blocking.
func (c *Circulation) Inject(ctx context.Context, content analyze.Content, destination string) (*Handle, error) {
	packet := Packet{
		ID:          uuid.New().String(),
		Destination: destination,
		Content:     content,
		InjectedAt:  time.Now(),
	}
	d := dispatched{packet: packet, done: make(chan Outcome, 1)}

	select {
	case c.arterial <- d:
		c.mu.Lock()
		c.vitals.Injected++
		c.mu.Unlock()
		return &Handle{PacketID: packet.ID, done: d.done}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, fmt.Errorf("arterial queue full")
	}
}

// Await blocks until the packet's outcome arrives, the timeout elapses, or
// ctx is cancelled. Timeouts are best-effort: the packet may still be
// processed afterward but its outcome is discarded.
func (c *Circulation) Await(ctx context.Context, h *Handle, timeout time.Duration) (Outcome, error) {
	if timeout <= 0 {
		timeout = c.config.AwaitTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-h.done:
		return out, nil
	case <-timer.C:
		return Outcome{}, fmt.Errorf("packet %s: timed out after %s", h.PacketID, timeout)
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Vitals returns a copy of the circulation counters.
func (c *Circulation) Vitals() Vitals {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.vitals
	v.PerOrgan = make(map[string]int, len(c.vitals.PerOrgan))
	for k, n := range c.vitals.PerOrgan {
		v.PerOrgan[k] = n
	}
	return v
}

// #endregion inject-await

// #region organ-functions

// processBrain runs the content analysis.
func processBrain(p Packet) (string, *analyze.Analysis, error) {
	a, err := analyze.Run(p.Content)
	if err != nil {
		return "", nil, err
	}
	return "brain_insight", &a, nil
}

// processLiver rejects malformed payloads instead of passing them on.
func processLiver(p Packet) (string, *analyze.Analysis, error) {
	if p.Content.Kind() == analyze.KindInvalid {
		return "", nil, fmt.Errorf("malformed payload filtered")
	}
	return "liver_insight", nil, nil
}

func tagOnly(insight string) processFn {
	return func(Packet) (string, *analyze.Analysis, error) {
		return insight, nil, nil
	}
}

// #endregion organ-functions
