package monitor

import (
	"sync"
	"time"
)

// RateDetector tracks event rates over a sliding window of one-second
// buckets and detects spikes.
type RateDetector struct {
	mu        sync.Mutex
	buckets   []int64 // indexed by unix second modulo window
	seconds   []int64 // unix second each bucket currently counts
	threshold float64 // spike threshold multiplier (3.0 = 3x average)
	now       func() time.Time
}

// NewRateDetector creates a rate detector with the given window and spike
// threshold. threshold is the multiplier over the window average that
// counts as a spike.
func NewRateDetector(window time.Duration, threshold float64) *RateDetector {
	if window < time.Second {
		window = 10 * time.Second
	}
	if threshold <= 0 {
		threshold = 3.0
	}
	n := int(window / time.Second)
	return &RateDetector{
		buckets:   make([]int64, n),
		seconds:   make([]int64, n),
		threshold: threshold,
		now:       time.Now,
	}
}

// Record adds an event at the current time.
// Returns true if a spike is detected.
func (r *RateDetector) Record() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sec := r.now().Unix()
	i := r.slot(sec)
	if r.seconds[i] != sec {
		r.seconds[i] = sec
		r.buckets[i] = 0
	}
	r.buckets[i]++

	return r.isSpiking(sec)
}

// CurrentRate returns events per second averaged over the window.
func (r *RateDetector) CurrentRate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	sec := r.now().Unix()
	var total int64
	for i := range r.buckets {
		if r.live(i, sec) {
			total += r.buckets[i]
		}
	}
	return float64(total) / float64(len(r.buckets))
}

func (r *RateDetector) slot(sec int64) int {
	n := int64(len(r.buckets))
	return int(((sec % n) + n) % n)
}

// live reports whether bucket i counts a second inside the window ending
// at sec.
func (r *RateDetector) live(i int, sec int64) bool {
	s := r.seconds[i]
	return r.buckets[i] > 0 && s <= sec && sec-s < int64(len(r.buckets))
}

// isSpiking compares the current second with the average of the other
// live seconds. Must be called with lock held.
func (r *RateDetector) isSpiking(sec int64) bool {
	cur := r.slot(sec)

	var sum int64
	live := 0
	for i := range r.buckets {
		if i == cur || !r.live(i, sec) {
			continue
		}
		sum += r.buckets[i]
		live++
	}
	if live < 2 {
		return false // not enough data
	}

	avg := float64(sum) / float64(live)
	return float64(r.buckets[cur]) > avg*r.threshold
}
