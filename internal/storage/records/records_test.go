package records

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string
	Name string
}

func (i item) Key() string { return i.ID }

func TestInsertAndGet(t *testing.T) {
	s := New[string, item](nil)

	in := item{ID: "a", Name: "first"}
	out, err := s.Insert(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, 1, s.Len())

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, in, got)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListKeepsInsertionOrder(t *testing.T) {
	s := New[string, item]([]item{{ID: "c"}, {ID: "a"}})
	_, _ = s.Insert(item{ID: "b"})

	first := s.List()
	second := s.List()
	assert.Equal(t, []item{{ID: "c"}, {ID: "a"}, {ID: "b"}}, first)
	assert.Equal(t, first, second)
}

func TestListReturnsCopy(t *testing.T) {
	s := New[string, item]([]item{{ID: "a", Name: "x"}})

	list := s.List()
	list[0].Name = "mutated"

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
}

type counted struct {
	ID    string
	Count *int
}

func (c counted) Key() string { return c.ID }

func (c counted) Clone() counted {
	n := *c.Count
	c.Count = &n
	return c
}

func TestClonerIsolatesStoredState(t *testing.T) {
	n := 1
	s := New[string, counted](nil)
	_, err := s.Insert(counted{ID: "a", Count: &n})
	require.NoError(t, err)

	n = 2
	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, *got.Count)

	*got.Count = 3
	*s.List()[0].Count = 4
	*s.Filter(func(counted) bool { return true })[0].Count = 5

	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, *got.Count)
}

func TestDuplicateKeys(t *testing.T) {
	t.Run("accepted by default", func(t *testing.T) {
		s := New[string, item](nil)
		_, err := s.Insert(item{ID: "a", Name: "one"})
		require.NoError(t, err)
		_, err = s.Insert(item{ID: "a", Name: "two"})
		require.NoError(t, err)
		assert.Equal(t, 2, s.Len())

		_, err = s.Update("a", item{ID: "a", Name: "updated"})
		require.NoError(t, err)
		assert.Equal(t, []item{{ID: "a", Name: "updated"}, {ID: "a", Name: "two"}}, s.List())
	})

	t.Run("rejected with unique keys", func(t *testing.T) {
		s := New[string, item](nil, WithUniqueKeys())
		_, err := s.Insert(item{ID: "a"})
		require.NoError(t, err)
		_, err = s.Insert(item{ID: "a"})
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.Equal(t, 1, s.Len())
	})
}

func TestUpdateReplacesWholesale(t *testing.T) {
	s := New[string, item]([]item{{ID: "a", Name: "old"}, {ID: "b", Name: "keep"}})

	updated, err := s.Update("a", item{ID: "a"})
	require.NoError(t, err)
	assert.Equal(t, item{ID: "a"}, updated)
	assert.Equal(t, []item{{ID: "a"}, {ID: "b", Name: "keep"}}, s.List())

	_, err = s.Update("missing", item{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, s.Len())
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	s := New[string, item]([]item{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	removed, err := s.Delete("b")
	require.NoError(t, err)
	assert.Equal(t, item{ID: "b"}, removed)
	assert.Equal(t, []item{{ID: "a"}, {ID: "c"}}, s.List())

	_, err = s.Get("b")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Delete("b")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, s.Len())
}

func TestFilter(t *testing.T) {
	s := New[string, item]([]item{{ID: "a", Name: "go"}, {ID: "b", Name: "rust"}, {ID: "c", Name: "go"}})

	got := s.Filter(func(i item) bool { return i.Name == "go" })
	assert.Equal(t, []item{{ID: "a", Name: "go"}, {ID: "c", Name: "go"}}, got)

	none := s.Filter(func(item) bool { return false })
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestConcurrentInserts(t *testing.T) {
	const n = 200
	s := New[string, item](nil, WithUniqueKeys())

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Insert(item{ID: fmt.Sprintf("id-%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, s.Len())
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	s := New[string, item](nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("id-%d", i)
			_, _ = s.Insert(item{ID: id})
			_, _ = s.Update(id, item{ID: id, Name: "updated"})
			_, _ = s.Delete(id)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.List()
			_ = s.Filter(func(i item) bool { return i.Name == "updated" })
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, s.Len())
}
