// Package synth fabricates Kubernetes container metrics for a fleet of
// simulated pods and exposes them in Prometheus exposition format. It feeds
// dashboards and alerting pipelines that expect cAdvisor-shaped series
// without a real cluster behind them.
package synth

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Node names pods are spread across.
var nodeNames = []string{"worker-1", "worker-2", "master-1"}

// podTemplate names a workload the generator can impersonate.
type podTemplate struct {
	name      string
	container string
	image     string
}

var podTemplates = []podTemplate{
	{"nginx", "nginx-container", "nginx:latest"},
	{"postgres", "postgres-container", "postgres:13"},
	{"redis", "redis-container", "redis:6"},
	{"elasticsearch", "es-container", "elasticsearch:7.13.0"},
	{"prometheus", "prom-container", "prom/prometheus:v2.30.0"},
	{"grafana", "grafana-container", "grafana/grafana:latest"},
	{"mongodb", "mongo-container", "mongo:4.4"},
	{"kafka", "kafka-container", "confluentinc/cp-kafka:latest"},
	{"mysql", "mysql-container", "mysql:8"},
	{"rabbitmq", "rabbitmq-container", "rabbitmq:3.9"},
}

// Gauge bounds and counter step ranges per tick.
const (
	memoryMinBytes = 100_000_000   // 100 MB
	memoryMaxBytes = 2_000_000_000 // 2 GB

	// Memory forced far above the container limit while an anomaly runs.
	anomalyMemoryBytes = 8_000_000_000

	anomalyChance   = 0.05
	anomalyMinTicks = 3
	anomalyMaxTicks = 8
)

// pod is one simulated workload. Counter values only ever grow.
type pod struct {
	name      string
	container string
	image     string
	node      string
	namespace string
	uid       string

	cpuSeconds    float64
	fsReadsBytes  float64
	fsWritesBytes float64
	fsReads       float64
	fsWrites      float64
	netTxBytes    float64
	netRxBytes    float64
	netTxErrors   float64
	netRxErrors   float64

	memoryBytes float64
}

// Options configure a Generator.
type Options struct {
	Pods      int
	Interval  time.Duration
	Anomalies bool
	// Seed fixes the random stream; zero seeds from the clock.
	Seed int64
}

// Generator owns all simulated pod state. A single ticker goroutine mutates
// it; scrapes read snapshots under the lock.
type Generator struct {
	mu       sync.RWMutex
	pods     []*pod
	rng      *rand.Rand
	interval time.Duration

	anomalies        bool
	anomalyPod       int
	anomalyTicksLeft int
}

// New builds a generator with n pods. The first tick happens on Run or an
// explicit Tick; freshly built pods start with zeroed counters.
func New(opts Options) *Generator {
	if opts.Pods <= 0 {
		opts.Pods = 25
	}
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Second
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Generator{
		rng:        rand.New(rand.NewSource(seed)),
		interval:   opts.Interval,
		anomalies:  opts.Anomalies,
		anomalyPod: -1,
	}
	seen := make(map[string]bool, opts.Pods)
	for i := 0; i < opts.Pods; i++ {
		tpl := podTemplates[g.rng.Intn(len(podTemplates))]
		name := fmt.Sprintf("%s-%04d", tpl.name, 1000+g.rng.Intn(9000))
		// Pod names are unique across the fleet; redraw on collision.
		for seen[name] {
			name = fmt.Sprintf("%s-%04d", tpl.name, 1000+g.rng.Intn(9000))
		}
		seen[name] = true
		g.pods = append(g.pods, &pod{
			name:        name,
			container:   tpl.container,
			image:       tpl.image,
			node:        nodeNames[g.rng.Intn(len(nodeNames))],
			namespace:   "default",
			uid:         fmt.Sprintf("docker-%s-%s", name, uuid.NewString()[:8]),
			memoryBytes: float64(memoryMinBytes),
		})
	}
	return g
}

// PodCount returns the number of simulated pods.
func (g *Generator) PodCount() int { return len(g.pods) }

// Tick advances every pod by one interval: counters grow by non-negative
// deltas, the memory gauge is resampled inside its bounds, and anomaly
// scripting may pin one pod's memory far outside them.
func (g *Generator) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()

	secs := g.interval.Seconds()
	for _, p := range g.pods {
		// CPU fraction in [0.1, 0.9) scaled by wall time.
		p.cpuSeconds += (0.1 + 0.8*g.rng.Float64()) * secs

		readBytes := float64(10_000 + g.rng.Intn(4_990_000))
		writeBytes := float64(5_000 + g.rng.Intn(1_995_000))
		p.fsReadsBytes += readBytes
		p.fsWritesBytes += writeBytes
		// IOPS approximated from 4KB blocks.
		p.fsReads += readBytes / 4096
		p.fsWrites += writeBytes / 4096

		p.netTxBytes += float64(50_000 + g.rng.Intn(9_950_000))
		p.netRxBytes += float64(100_000 + g.rng.Intn(19_900_000))
		p.netTxErrors += float64(g.rng.Intn(11))
		p.netRxErrors += float64(g.rng.Intn(16))

		p.memoryBytes = float64(memoryMinBytes) +
			g.rng.Float64()*float64(memoryMaxBytes-memoryMinBytes)
	}

	if g.anomalies {
		g.tickAnomaly()
	}
}

// tickAnomaly runs the scripted perturbation: at most one pod at a time has
// its memory gauge forced out of range, for a bounded number of ticks.
// Caller holds the write lock.
func (g *Generator) tickAnomaly() {
	if g.anomalyTicksLeft == 0 && g.rng.Float64() < anomalyChance {
		g.anomalyPod = g.rng.Intn(len(g.pods))
		g.anomalyTicksLeft = anomalyMinTicks + g.rng.Intn(anomalyMaxTicks-anomalyMinTicks+1)
	}
	if g.anomalyTicksLeft > 0 {
		g.pods[g.anomalyPod].memoryBytes = anomalyMemoryBytes
		g.anomalyTicksLeft--
		if g.anomalyTicksLeft == 0 {
			g.anomalyPod = -1
		}
	}
}

// AnomalyActive reports whether a perturbation is currently running.
func (g *Generator) AnomalyActive() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.anomalyTicksLeft > 0 || g.anomalyPod >= 0
}

// Run ticks the generator until ctx is canceled. The first tick fires
// immediately so scrapes never see an all-zero fleet for a full interval.
func (g *Generator) Run(ctx context.Context) {
	g.Tick()
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Tick()
		}
	}
}
