package dashboard

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"user-role-admin/internal/service"
)

// DefaultNoticeTTL 提示自动消失时间
const DefaultNoticeTTL = 3 * time.Second

// Notification 当前提示及是否可见
type Notification struct {
	service.Notice
	Visible bool `json:"visible"`
}

// notifier 定时器在自己的 goroutine 里回调，所以单独加锁
type notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	cur     service.Notice
	visible bool
	seq     uint64
	timer   *time.Timer
}

func newNotifier(ttl time.Duration) *notifier {
	return &notifier{ttl: ttl}
}

func (n *notifier) show(nt service.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.seq++
	n.cur, n.visible = nt, true
	if n.ttl <= 0 {
		return
	}
	seq := n.seq
	n.timer = time.AfterFunc(n.ttl, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		// 期间又弹了新提示就不关
		if n.seq == seq {
			n.visible = false
		}
	})
}

func (n *notifier) current() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Notification{Notice: n.cur, Visible: n.visible}
}

func (n *notifier) dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.visible = false
}

// guard 同一视图同时只允许一个变更在途
type guard struct {
	sem  *semaphore.Weighted
	busy atomic.Bool
}

func newGuard() *guard { return &guard{sem: semaphore.NewWeighted(1)} }

func (g *guard) acquire() bool {
	if !g.sem.TryAcquire(1) {
		return false
	}
	g.busy.Store(true)
	return true
}

func (g *guard) release() {
	g.busy.Store(false)
	g.sem.Release(1)
}

func (g *guard) Busy() bool { return g.busy.Load() }
