package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultSlotCacheTTL = 5 * time.Minute

// Slot is a free start time.
type Slot struct {
	Time  string    `json:"time"` // HH:MM
	Start time.Time `json:"start"`
}

// SlotTimes returns the HH:MM labels of the first n slots (all when n <= 0).
func SlotTimes(slots []Slot, n int) []string {
	if n <= 0 || n > len(slots) {
		n = len(slots)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = slots[i].Time
	}
	return out
}

// SlotCache memoizes free-slot lists per specialist, day and duration.
type SlotCache interface {
	Get(ctx context.Context, key string) ([]Slot, bool, error)
	Set(ctx context.Context, key string, slots []Slot) error
	Invalidate(ctx context.Context, specialistID string, day time.Time) error
}

// SlotObserver receives lookup outcomes; metrics implement it.
type SlotObserver interface {
	ObserveSlotLookup(cacheHit bool)
}

func slotCacheKey(specialistID string, day time.Time, duration time.Duration) string {
	return fmt.Sprintf("slots:%s:%s:%d", specialistID, day.Format(time.DateOnly), int(duration.Minutes()))
}

// RedisSlotCache stores slot lists as JSON with a TTL.
type RedisSlotCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisSlotCache creates the cache; ttl <= 0 uses five minutes.
func NewRedisSlotCache(client *redis.Client, ttl time.Duration) *RedisSlotCache {
	if client == nil {
		panic("validation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSlotCacheTTL
	}
	return &RedisSlotCache{redis: client, ttl: ttl}
}

func (c *RedisSlotCache) Get(ctx context.Context, key string) ([]Slot, bool, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("validation: read slot cache: %w", err)
	}
	var slots []Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, false, fmt.Errorf("validation: decode slot cache: %w", err)
	}
	return slots, true, nil
}

func (c *RedisSlotCache) Set(ctx context.Context, key string, slots []Slot) error {
	if slots == nil {
		slots = []Slot{}
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("validation: encode slot cache: %w", err)
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("validation: write slot cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached duration for the specialist's day.
func (c *RedisSlotCache) Invalidate(ctx context.Context, specialistID string, day time.Time) error {
	pattern := fmt.Sprintf("slots:%s:%s:*", specialistID, day.Format(time.DateOnly))
	iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("validation: scan slot cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("validation: invalidate slot cache: %w", err)
	}
	return nil
}

// SlotFinder enumerates free start times on a day.
type SlotFinder struct {
	config   ConfigSource
	busy     BusyLister
	cache    SlotCache
	observer SlotObserver
	step     time.Duration
	buffer   time.Duration
	now      func() time.Time
	tracer   trace.Tracer
}

// SlotFinderOption configures a SlotFinder.
type SlotFinderOption func(*SlotFinder)

// WithSlotCache enables caching.
func WithSlotCache(cache SlotCache) SlotFinderOption {
	return func(f *SlotFinder) { f.cache = cache }
}

// WithSlotObserver reports cache hits and misses.
func WithSlotObserver(o SlotObserver) SlotFinderOption {
	return func(f *SlotFinder) { f.observer = o }
}

// WithSlotStep overrides the 30-minute grid.
func WithSlotStep(step time.Duration) SlotFinderOption {
	return func(f *SlotFinder) {
		if step > 0 {
			f.step = step
		}
	}
}

// NewSlotFinder creates a finder that shares the checker's schedule, clock
// and lead time.
func NewSlotFinder(config ConfigSource, busy BusyLister, opts Options, options ...SlotFinderOption) *SlotFinder {
	if config == nil {
		config = StaticConfig(nil)
	}
	opts = opts.withDefaults()
	f := &SlotFinder{
		config: config,
		busy:   busy,
		step:   30 * time.Minute,
		buffer: opts.Buffer,
		now:    opts.Now,
		tracer: otel.Tracer("clinic-secretary.internal.validation.slots"),
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// FreeSlots lists start times on day where an appointment of duration fits
// inside opening hours without touching existing bookings.
func (f *SlotFinder) FreeSlots(ctx context.Context, specialistID string, day time.Time, duration time.Duration) ([]Slot, error) {
	ctx, span := f.tracer.Start(ctx, "validation.free_slots", trace.WithAttributes(
		attribute.String("specialist_id", specialistID),
		attribute.String("date", day.Format(time.DateOnly)),
	))
	defer span.End()

	cfg, err := f.config.Get(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("validation: load clinic config: %w", err)
	}
	day = cfg.DayStart(day)
	key := slotCacheKey(specialistID, day, duration)
	now := f.now().In(day.Location())
	// Today's slots shrink as the lead time moves, so they are never cached.
	sameDay := cfg.DayStart(now).Equal(day)
	useCache := f.cache != nil && !sameDay

	if useCache {
		cached, ok, err := f.cache.Get(ctx, key)
		if err != nil {
			span.RecordError(err)
		} else if ok {
			f.observe(true)
			return cached, nil
		}
	}
	f.observe(false)

	slots := []Slot{}
	open, closeAt, ok := cfg.HoursOn(day)
	if ok {
		if _, holiday := cfg.Holiday(day); holiday {
			ok = false
		}
	}
	if ok {
		var busy []Interval
		if f.busy != nil {
			busy, err = f.busy.ListBusy(ctx, BusyQuery{SpecialistID: specialistID, From: day, To: day.AddDate(0, 0, 1)})
			if err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("validation: list busy intervals: %w", err)
			}
		}
		earliest := now.Add(f.buffer)
		for start := open; !start.Add(duration).After(closeAt); start = start.Add(f.step) {
			if sameDay && !start.After(earliest) {
				continue
			}
			if overlapsAny(busy, start, start.Add(duration)) {
				continue
			}
			slots = append(slots, Slot{Time: start.Format("15:04"), Start: start})
		}
	}

	if useCache {
		if err := f.cache.Set(ctx, key, slots); err != nil {
			span.RecordError(err)
		}
	}
	span.SetAttributes(attribute.Int("slots", len(slots)))
	return slots, nil
}

// Invalidate forgets cached slots for the specialist's day.
func (f *SlotFinder) Invalidate(ctx context.Context, specialistID string, day time.Time) error {
	if f.cache == nil {
		return nil
	}
	cfg, err := f.config.Get(ctx)
	if err != nil {
		return fmt.Errorf("validation: load clinic config: %w", err)
	}
	return f.cache.Invalidate(ctx, specialistID, cfg.DayStart(day))
}

func (f *SlotFinder) observe(hit bool) {
	if f.observer != nil {
		f.observer.ObserveSlotLookup(hit)
	}
}
