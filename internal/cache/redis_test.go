package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRedis answers GET, SET, MGET and DEL from a map through client hooks,
// so the RedisCache paths run without a server
type memRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func (m *memRedis) DialHook(redis.DialHook) redis.DialHook {
	return func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("no network in tests")
	}
}

func (m *memRedis) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		m.apply(cmd)
		return cmd.Err()
	}
}

func (m *memRedis) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(_ context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			m.apply(cmd)
		}
		return nil
	}
}

func (m *memRedis) apply(cmd redis.Cmder) {
	m.mu.Lock()
	defer m.mu.Unlock()

	args := cmd.Args()
	switch cmd.Name() {
	case "get":
		v, ok := m.data[args[1].(string)]
		if !ok {
			cmd.SetErr(redis.Nil)
			return
		}
		cmd.(*redis.StringCmd).SetVal(v)
	case "set":
		key := args[1].(string)
		m.data[key] = string(args[2].([]byte))
		delete(m.ttls, key)
		if len(args) == 5 {
			n := args[4].(int64)
			switch args[3] {
			case "px":
				m.ttls[key] = time.Duration(n) * time.Millisecond
			case "ex":
				m.ttls[key] = time.Duration(n) * time.Second
			}
		}
		cmd.(*redis.StatusCmd).SetVal("OK")
	case "mget":
		vals := make([]interface{}, 0, len(args)-1)
		for _, k := range args[1:] {
			if v, ok := m.data[k.(string)]; ok {
				vals = append(vals, v)
			} else {
				vals = append(vals, nil)
			}
		}
		cmd.(*redis.SliceCmd).SetVal(vals)
	case "del":
		var n int64
		for _, k := range args[1:] {
			if _, ok := m.data[k.(string)]; ok {
				delete(m.data, k.(string))
				n++
			}
		}
		cmd.(*redis.IntCmd).SetVal(n)
	default:
		cmd.SetErr(fmt.Errorf("unsupported command %s", cmd.Name()))
	}
}

func newTestRedis(t *testing.T, prefix string) (*RedisCache, *memRedis) {
	t.Helper()
	mem := &memRedis{data: make(map[string]string), ttls: make(map[string]time.Duration)}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	client.AddHook(mem)
	rc := newRedisCache(client, prefix)
	t.Cleanup(func() { rc.Close() })
	return rc, mem
}

func TestRedisCacheGetSetDelete(t *testing.T) {
	rc, mem := newTestRedis(t, "feed:")
	ctx := context.Background()
	key := EventKey("abc")

	_, found, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, rc.Set(ctx, key, []byte(`{"id":"abc"}`), 0))
	assert.Equal(t, `{"id":"abc"}`, mem.data["feed:event:abc"], "keys carry the prefix")
	assert.NotContains(t, mem.ttls, "feed:event:abc", "zero ttl never expires")

	got, found, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte(`{"id":"abc"}`), got)

	require.NoError(t, rc.Delete(ctx, key))
	_, found, err = rc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCacheProfileTTL(t *testing.T) {
	rc, mem := newTestRedis(t, "feed:")
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, ProfileKey("pk"), []byte("{}"), time.Hour))
	assert.Equal(t, time.Hour, mem.ttls["feed:profile:pk"])
}

func TestRedisCacheMultiple(t *testing.T) {
	rc, mem := newTestRedis(t, "feed:")
	ctx := context.Background()

	items := map[string][]byte{
		EventKey("child"):  []byte("C"),
		RepliesKey("root"): []byte(`["child"]`),
	}
	require.NoError(t, rc.SetMultiple(ctx, items, 0))
	assert.Len(t, mem.data, 2)
	assert.Equal(t, `["child"]`, mem.data["feed:replies:root"])

	got, err := rc.GetMultiple(ctx, []string{EventKey("child"), EventKey("missing"), RepliesKey("root")})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		EventKey("child"):  []byte("C"),
		RepliesKey("root"): []byte(`["child"]`),
	}, got)

	got, err = rc.GetMultiple(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, rc.SetMultiple(ctx, nil, 0))
}

func TestRedisCachePrefixesIsolateFeeds(t *testing.T) {
	ctx := context.Background()
	mem := &memRedis{data: make(map[string]string), ttls: make(map[string]time.Duration)}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	client.AddHook(mem)
	defer client.Close()
	a, b := newRedisCache(client, "a:"), newRedisCache(client, "b:")

	require.NoError(t, a.Set(ctx, EventKey("x"), []byte("from a"), 0))
	_, found, err := b.Get(ctx, EventKey("x"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNewRedisCacheErrors(t *testing.T) {
	_, err := NewRedisCache("not a url", "p:")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis URL")
}

func TestNewFallsBackToMemoryOnEmptyOrBadURL(t *testing.T) {
	backend, kind := New("", "p:", DefaultConfig())
	defer backend.Close()
	assert.Equal(t, "memory", kind)
	_, ok := backend.(*MemoryCache)
	assert.True(t, ok)

	backend, kind = New("::bad::", "p:", DefaultConfig())
	defer backend.Close()
	assert.Equal(t, "memory", kind)
}
