package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/vnkhanh/rental-server/utils"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps a token bucket per client IP. Idle buckets are swept
// every minute until Stop is called.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client

	every time.Duration
	burst int
	idle  time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewIPRateLimiter allows perMinute requests per minute per IP with the given
// burst, forgetting IPs idle for longer than idle.
func NewIPRateLimiter(perMinute, burst int, idle time.Duration) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	rl := &IPRateLimiter{
		clients: make(map[string]*client),
		every:   time.Minute / time.Duration(perMinute),
		burst:   burst,
		idle:    idle,
		stop:    make(chan struct{}),
	}
	go rl.sweep(time.Minute)
	return rl
}

// reserve takes a token for ip. It returns false and the wait until the next
// token when the bucket is empty.
func (rl *IPRateLimiter) reserve(ip string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	cl, ok := rl.clients[ip]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(rate.Every(rl.every), rl.burst)}
		rl.clients[ip] = cl
	}
	cl.lastSeen = now
	rl.mu.Unlock()

	r := cl.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, rl.every
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

func (rl *IPRateLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.forgetIdle(now)
		}
	}
}

func (rl *IPRateLimiter) forgetIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > rl.idle {
			delete(rl.clients, ip)
		}
	}
}

func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// RateLimitByIP rejects requests over the limit with 429 and a Retry-After header.
func RateLimitByIP(rl *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := rl.reserve(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			utils.RespondErrorWithCode(c, http.StatusTooManyRequests, utils.ErrCodeRateLimitExceeded,
				"Too many requests, please try again in a few minutes", nil)
			return
		}
		c.Next()
	}
}

// Limiters is the set of per-route limiters one router uses.
type Limiters struct {
	BookingCreate *IPRateLimiter
	Payment       *IPRateLimiter
	Callback      *IPRateLimiter
	Chatbot       *IPRateLimiter
}

func NewLimiters() *Limiters {
	return &Limiters{
		BookingCreate: NewIPRateLimiter(10, 5, 5*time.Minute),
		Payment:       NewIPRateLimiter(10, 5, 5*time.Minute),
		Callback:      NewIPRateLimiter(60, 20, 5*time.Minute),
		Chatbot:       NewIPRateLimiter(20, 10, 5*time.Minute),
	}
}

func (l *Limiters) Stop() {
	for _, rl := range []*IPRateLimiter{l.BookingCreate, l.Payment, l.Callback, l.Chatbot} {
		rl.Stop()
	}
}
