package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/circularity/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then sessionID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the leaderboard
// from best to worst. Subtree sizes make rank queries O(log n).

// scoreScale converts scores to fixed point; scores carry two decimals so
// six digits leave room for exact equality.
const scoreScale = 1_000_000

const defaultSeed = 1

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// treap node
type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aID) should appear before (bScore, bID).
func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n, fresh *node) *node {
	if n == nil {
		return fresh
	}
	if less(fresh.score, fresh.id, n.score, n.id) {
		n.left = insert(n.left, fresh)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, fresh)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		// Rotate the higher-priority child up until n becomes a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// countAbove returns the number of nodes with a score strictly above score.
func countAbove(n *node, score scoreFP) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, Entry{SessionID: n.id, Score: toFloat(n.score)})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// assignRanks uses competition ranking: equal scores share a rank and the
// next distinct score skips ahead (1, 1, 3).
func assignRanks(entries []Entry) {
	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

// TreapStore is a Store backed by a treap keyed on (score desc, id asc).
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]scoreFP
	rng  *rand.Rand
	seed int64
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		byID: make(map[string]scoreFP),
		seed: defaultSeed,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rng = rand.New(rand.NewSource(s.seed)) //nolint:gosec // priorities only balance the tree

	metrics.UpdateBestEntries(0)
	return s
}

// UpdateBest implements Store.UpdateBest in O(log n) expected time.
func (s *TreapStore) UpdateBest(ctx context.Context, sessionID string, score float64) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryLatency("update", float64(time.Since(start).Microseconds())/1000)
	}()

	if math.IsNaN(score) || math.IsInf(score, 0) {
		metrics.RecordErrorByComponent("repository", "invalid_score")
		return false, fmt.Errorf("%w: %v", ErrInvalidScore, score)
	}
	ns := toFixedPoint(score)

	s.mu.Lock()
	if old, ok := s.byID[sessionID]; ok {
		if ns <= old {
			s.mu.Unlock()
			return false, nil
		}
		s.root = deleteNode(s.root, sessionID, old)
	}
	s.byID[sessionID] = ns
	s.root = insert(s.root, &node{id: sessionID, score: ns, prio: s.rng.Uint64(), size: 1})
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateBestEntries(count)
	return true, nil
}

// Best returns the rank and score of a session in O(log n).
func (s *TreapStore) Best(ctx context.Context, sessionID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryLatency("best", float64(time.Since(start).Microseconds())/1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	score, ok := s.byID[sessionID]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return Entry{
		Rank:      1 + countAbove(s.root, score),
		SessionID: sessionID,
		Score:     toFloat(score),
	}, nil
}

// TopN returns the top N entries ordered by score desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryLatency("top_n", float64(time.Since(start).Microseconds())/1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &out)
	assignRanks(out)
	return out, nil
}

// Remove forgets a session's best.
func (s *TreapStore) Remove(ctx context.Context, sessionID string) bool {
	s.mu.Lock()
	old, ok := s.byID[sessionID]
	if ok {
		s.root = deleteNode(s.root, sessionID, old)
		delete(s.byID, sessionID)
	}
	count := len(s.byID)
	s.mu.Unlock()

	if ok {
		metrics.UpdateBestEntries(count)
	}
	return ok
}

// Count returns the number of stored bests.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
