package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxTrackedClients bounds how many client buckets are kept.
const maxTrackedClients = 1024

// probeLimiter is a per-client token bucket guarding /healthz, which shares
// the single store connection with the interactive session.
type probeLimiter struct {
	capacity   float64
	perSec     float64
	now        func() time.Time
	maxClients int

	mu      sync.Mutex
	clients map[string]*allowance
}

type allowance struct {
	tokens float64
	seen   time.Time
}

// newProbeLimiter allows perMinute probes per client with a burst of the same size.
func newProbeLimiter(perMinute int) *probeLimiter {
	return &probeLimiter{
		capacity:   float64(perMinute),
		perSec:     float64(perMinute) / 60,
		now:        time.Now,
		maxClients: maxTrackedClients,
		clients:    make(map[string]*allowance),
	}
}

func (l *probeLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.take(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many health probes"})
			return
		}
		c.Next()
	}
}

func (l *probeLimiter) take(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	a, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= l.maxClients {
			l.prune(now)
		}
		a = &allowance{tokens: l.capacity, seen: now}
		l.clients[client] = a
	}
	a.tokens += now.Sub(a.seen).Seconds() * l.perSec
	if a.tokens > l.capacity {
		a.tokens = l.capacity
	}
	a.seen = now

	if a.tokens < 1 {
		return false
	}
	a.tokens--
	return true
}

// prune drops clients whose bucket has refilled. If none has, the least
// recently seen client is dropped instead.
func (l *probeLimiter) prune(now time.Time) {
	var oldest string
	var oldestSeen time.Time
	for client, a := range l.clients {
		if a.tokens+now.Sub(a.seen).Seconds()*l.perSec >= l.capacity {
			delete(l.clients, client)
			continue
		}
		if oldest == "" || a.seen.Before(oldestSeen) {
			oldest, oldestSeen = client, a.seen
		}
	}
	if len(l.clients) >= l.maxClients && oldest != "" {
		delete(l.clients, oldest)
	}
}
