package loader_test

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"updoot/internal/loader"
	"updoot/internal/models"
	"updoot/internal/repositories"

	"github.com/stretchr/testify/assert"
)

// countingFetch records every dispatched batch and serves values derived from
// the key.
type countingFetch struct {
	mu      sync.Mutex
	batches [][]uint
	calls   int32
}

func (f *countingFetch) fn(keys []uint) (map[uint]string, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.batches = append(f.batches, keys)
	f.mu.Unlock()

	out := make(map[uint]string, len(keys))
	for _, k := range keys {
		if k == 0 { // key 0 plays the absent row
			continue
		}
		out[k] = fmt.Sprintf("value-%d", k)
	}
	return out, nil
}

func TestLoadAll_SingleFetchInRequestOrder(t *testing.T) {
	fetch := &countingFetch{}
	l := loader.New(fetch.fn, loader.WithWait(5*time.Millisecond))

	keys := []uint{5, 3, 9, 3, 1, 5, 8, 2, 7, 4} // duplicates included
	values, founds, err := l.LoadAll(keys)

	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetch.calls))
	for i, k := range keys {
		assert.True(t, founds[i])
		assert.Equal(t, fmt.Sprintf("value-%d", k), values[i])
	}
	// The underlying fetch sees each key once, in first-seen order.
	assert.Equal(t, [][]uint{{5, 3, 9, 1, 8, 2, 7, 4}}, fetch.batches)
}

func TestLoad_ConcurrentCallersShareOneFetch(t *testing.T) {
	fetch := &countingFetch{}
	l := loader.New(fetch.fn, loader.WithWait(50*time.Millisecond))

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, ok, err := l.Load(uint(i + 1))
			assert.NoError(t, err)
			assert.True(t, ok)
			results[i] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetch.calls))
	for i := 0; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("value-%d", i+1), results[i])
	}
}

func TestLoad_AbsentKey(t *testing.T) {
	fetch := &countingFetch{}
	l := loader.New(fetch.fn)

	v, ok, err := l.Load(0)

	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestLoad_ErrorReachesEveryCaller(t *testing.T) {
	boom := errors.New("store unavailable")
	l := loader.New(func(keys []uint) (map[uint]string, error) {
		return nil, boom
	}, loader.WithWait(20*time.Millisecond))

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = l.Load(uint(i + 1))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}
}

func TestLoad_MaxBatchSplitsFetches(t *testing.T) {
	fetch := &countingFetch{}
	l := loader.New(fetch.fn, loader.WithWait(5*time.Millisecond), loader.WithMaxBatch(3))

	_, _, err := l.LoadAll([]uint{1, 2, 3, 4, 5})

	assert.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetch.calls))
	fetch.mu.Lock()
	sizes := []int{len(fetch.batches[0]), len(fetch.batches[1])}
	fetch.mu.Unlock()
	assert.ElementsMatch(t, []int{3, 2}, sizes)
}

func TestSeparateLoadersDoNotShareBatches(t *testing.T) {
	// One loader per request: a second request's loader must trigger its own
	// fetch even for keys the first already resolved.
	fetch := &countingFetch{}
	first := loader.New(fetch.fn)
	second := loader.New(fetch.fn)

	v1, _, err := first.Load(1)
	assert.NoError(t, err)
	v2, _, err := second.Load(1)
	assert.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fetch.calls))
}

func TestSequentialBatches(t *testing.T) {
	fetch := &countingFetch{}
	l := loader.New(fetch.fn, loader.WithWait(time.Millisecond))

	_, _, err := l.Load(1)
	assert.NoError(t, err)
	// The first batch has dispatched; a later Load opens a new one.
	_, _, err = l.Load(2)
	assert.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&fetch.calls))
}

// updootRepoStub fills out the repositories.UpdootRepository interface for
// fakes that only care about GetMany.
type updootRepoStub struct{}

func (updootRepoStub) WithinTx(func(tx repositories.UpdootRepository) error) error {
	panic("not implemented")
}
func (updootRepoStub) Get(uint, uint) (*models.Updoot, error)  { panic("not implemented") }
func (updootRepoStub) GetPost(uint) (*models.Post, error)      { panic("not implemented") }
func (updootRepoStub) Create(*models.Updoot) error             { panic("not implemented") }
func (updootRepoStub) UpdateValue(uint, uint, int, int) error  { panic("not implemented") }
func (updootRepoStub) AddPostPoints(uint, int) error           { panic("not implemented") }
func (updootRepoStub) GetMany([]models.UpdootKey) ([]models.Updoot, error) {
	panic("not implemented")
}

// fakeUpdootStore serves canned vote rows and counts fetches.
type fakeUpdootStore struct {
	updootRepoStub
	rows  []models.Updoot
	calls int32
}

func (f *fakeUpdootStore) GetMany(keys []models.UpdootKey) ([]models.Updoot, error) {
	atomic.AddInt32(&f.calls, 1)
	var out []models.Updoot
	for _, row := range f.rows {
		for _, k := range keys {
			if row.PostID == k.PostID && row.UserID == k.UserID {
				out = append(out, row)
			}
		}
	}
	return out, nil
}

func TestUpdootLoader(t *testing.T) {
	store := &fakeUpdootStore{rows: []models.Updoot{
		{UserID: 7, PostID: 1, Value: 1},
		{UserID: 7, PostID: 3, Value: -1},
	}}
	l := loader.NewUpdootLoader(store, loader.WithWait(5*time.Millisecond))

	keys := make([]models.UpdootKey, 10)
	for i := range keys {
		keys[i] = models.UpdootKey{PostID: uint(i + 1), UserID: 7}
	}
	values, founds, err := l.LoadAll(keys)

	assert.NoError(t, err)
	// Ten posts, one requesting user, exactly one underlying fetch.
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.calls))
	assert.True(t, founds[0])
	assert.Equal(t, 1, values[0])
	assert.True(t, founds[2])
	assert.Equal(t, -1, values[2])
	for i := 3; i < 10; i++ {
		assert.False(t, founds[i])
	}
}
