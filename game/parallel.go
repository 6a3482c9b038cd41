package game

import (
	"cmp"
	"runtime"
	"slices"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/trail/components"
	"github.com/pthm-cable/trail/systems"
	"github.com/pthm-cable/trail/telemetry"
)

// agentSnapshot captures read-only state for parallel processing.
type agentSnapshot struct {
	Entity  ecs.Entity
	Pos     components.Position
	Rot     components.Rotation
	Forager components.Forager // shares the live RNG and trail backing array
}

// agentIntent is one computed update plus storage for its food candidates,
// which must outlive the worker scratch they were found in.
type agentIntent struct {
	systems.Intent
	candidates []systems.FoodSite
}

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Sites   []systems.FoodSite
	Handles []ecs.Entity
}

// workChunk represents a range of agents for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds resources for the agent phase.
type parallelState struct {
	snapshots  []agentSnapshot
	intents    []agentIntent
	scratches  []workerScratch
	numWorkers int
	threshold  int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newParallelState creates the pool. workers <= 0 means GOMAXPROCS.
// A threshold <= 0 disables the pool.
func newParallelState(workers, threshold int) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	scratches := make([]workerScratch, workers)
	for i := range scratches {
		scratches[i].Sites = make([]systems.FoodSite, 0, 16)
		scratches[i].Handles = make([]ecs.Entity, 0, 16)
	}
	return &parallelState{
		numWorkers: workers,
		threshold:  threshold,
		scratches:  scratches,
		snapshots:  make([]agentSnapshot, 0, 512),
		intents:    make([]agentIntent, 0, 512),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(s *Simulation, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.computeChunk(chunk.start, chunk.end, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// updateAgents runs the agent phase: snapshot, compute intents, then apply
// them in ascending agent order.
func (s *Simulation) updateAgents() {
	p := s.parallel

	// Phase A: Build snapshots (single-threaded)
	p.snapshots = p.snapshots[:0]
	query := s.agentFilter.Query()
	for query.Next() {
		pos, rot, f := query.Get()
		p.snapshots = append(p.snapshots, agentSnapshot{
			Entity:  query.Entity(),
			Pos:     *pos,
			Rot:     *rot,
			Forager: *f,
		})
	}
	slices.SortFunc(p.snapshots, func(a, b agentSnapshot) int {
		return cmp.Compare(a.Forager.ID, b.Forager.ID)
	})

	n := len(p.snapshots)
	if n == 0 {
		return
	}

	if cap(p.intents) < n {
		grown := make([]agentIntent, n)
		copy(grown, p.intents[:cap(p.intents)])
		p.intents = grown
	}
	p.intents = p.intents[:n]

	// Phase B: Compute, single or parallel based on agent count
	if p.threshold <= 0 || n < p.threshold || p.numWorkers == 1 {
		s.computeChunk(0, n, &p.scratches[0])
	} else {
		s.computeParallel(n)
	}

	// Phase C: Apply intents (single-threaded, preserves determinism)
	s.perfCollector.StartPhase(telemetry.PhaseApply)
	s.applyIntents()
}

// computeParallel dispatches work to the worker pool.
func (s *Simulation) computeParallel(n int) {
	p := s.parallel
	if !p.running {
		p.startWorkers(s)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// computeChunk processes a range of agents for a single worker. It reads the
// fields and the food index and writes only its own intent slots.
func (s *Simulation) computeChunk(i0, i1 int, scratch *workerScratch) {
	index := s.env.Index()
	sensing := s.params.SensingRadius

	for i := i0; i < i1; i++ {
		snap := &s.parallel.snapshots[i]
		slot := &s.parallel.intents[i]

		scratch.Sites = scratch.Sites[:0]
		if snap.Forager.State == components.Searching {
			scratch.Sites, scratch.Handles = index.QueryInto(scratch.Sites, scratch.Handles, snap.Pos.X, snap.Pos.Y, sensing)
		}

		in := systems.UpdateForager(snap.Pos, snap.Rot, &snap.Forager, scratch.Sites, &s.senses, &s.params)

		slot.candidates = append(slot.candidates[:0], in.Candidates...)
		in.Candidates = slot.candidates
		slot.Intent = in
	}
}

// applyIntents writes computed results back to ECS components in agent order.
func (s *Simulation) applyIntents() {
	for i := range s.parallel.snapshots {
		snap := &s.parallel.snapshots[i]
		in := &s.parallel.intents[i].Intent

		pos, rot, f := s.agentMapper.Get(snap.Entity)
		if pos == nil || rot == nil || f == nil {
			continue
		}

		pos.X, pos.Y = in.X, in.Y
		rot.Heading = in.Heading

		switch in.DepositField {
		case systems.FieldSearching:
			s.searching.Deposit(in.X, in.Y, in.DepositAmount)
		case systems.FieldFound:
			s.found.Deposit(in.X, in.Y, in.DepositAmount)
		}

		switch {
		case in.Pickup:
			s.tryPickup(f, in.Candidates)
		case in.Deliver:
			s.deliver(f)
		}

		f.RememberPosition(*pos, s.cfg.Agent.TrailLength)
	}
}

// tryPickup takes food from the first candidate that still has some.
func (s *Simulation) tryPickup(f *components.Forager, candidates []systems.FoodSite) {
	for _, c := range candidates {
		took := s.env.Take(c.Handle, s.cfg.Agent.PickupAmount)
		if took == 0 {
			continue
		}
		f.State = components.Returning
		f.Carried = took
		f.ClearTrail()
		s.collector.RecordPickup()
		s.lifetime.RecordPickup(f.ID, s.tick)
		return
	}
	s.collector.RecordFailedPickup()
}

// deliver drops the carried food at the nest.
func (s *Simulation) deliver(f *components.Forager) {
	f.Delivered += f.Carried
	s.delivered += f.Carried
	f.Carried = 0
	f.State = components.Searching
	f.ClearTrail()

	trip, ok := s.lifetime.RecordDelivery(f.ID, s.tick)
	if !ok {
		trip = -1
	}
	s.collector.RecordDelivery(trip)
}

// stopParallelWorkers should be called when shutting down the simulation.
func (s *Simulation) stopParallelWorkers() {
	if s.parallel != nil {
		s.parallel.stopWorkers()
	}
}
