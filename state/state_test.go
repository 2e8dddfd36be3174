// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/hiring/cache"
	"github.com/vechain/hiring/lvldb"
)

func newTestState(t *testing.T) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	c, err := cache.NewLRU(16)
	require.NoError(t, err)
	return New(db, c), db
}

func TestStateGetPut(t *testing.T) {
	st, db := newTestState(t)

	val, err := st.Get([]byte("missing"))
	require.NoError(t, err)
	assert.Nil(t, val)

	st.Put([]byte("k"), []byte("v"))
	val, err = st.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	has, err := db.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, has, "writes stay in memory until committed")

	st.Delete([]byte("k"))
	has, err = st.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStateCheckpoint(t *testing.T) {
	st, _ := newTestState(t)

	st.Put([]byte("a"), []byte("1"))
	cp := st.NewCheckpoint()
	st.Put([]byte("a"), []byte("2"))
	st.Put([]byte("b"), []byte("3"))

	st.RevertTo(cp)

	a, err := st.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), a)

	b, err := st.Get([]byte("b"))
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestStateIterateMergesOverlay(t *testing.T) {
	st, db := newTestState(t)
	require.NoError(t, db.Put([]byte("p1"), []byte("store")))
	require.NoError(t, db.Put([]byte("p2"), []byte("store")))
	require.NoError(t, db.Put([]byte("q1"), []byte("other")))

	st.Put([]byte("p3"), []byte("overlay"))
	st.Put([]byte("p1"), []byte("updated"))
	st.Delete([]byte("p2"))

	var keys, vals []string
	require.NoError(t, st.Iterate([]byte("p"), func(k, v []byte) bool {
		keys = append(keys, string(k))
		vals = append(vals, string(v))
		return true
	}))
	assert.Equal(t, []string{"p1", "p3"}, keys)
	assert.Equal(t, []string{"updated", "overlay"}, vals)

	count := 0
	require.NoError(t, st.Iterate(nil, func(_, _ []byte) bool {
		count++
		return false
	}))
	assert.Equal(t, 1, count)
}

func TestStageCommit(t *testing.T) {
	st, db := newTestState(t)
	require.NoError(t, db.Put([]byte("gone"), []byte("x")))

	st.Put([]byte("k1"), []byte("v1"))
	st.Put([]byte("k2"), []byte("v2"))
	st.Delete([]byte("gone"))

	stage := st.Stage()
	assert.Equal(t, 3, stage.Len())
	hash := stage.Hash()
	assert.False(t, hash.IsZero())
	assert.Equal(t, hash, st.Stage().Hash(), "hash is deterministic")

	require.NoError(t, stage.Commit())

	v, err := db.Get([]byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	_, err = db.Get([]byte("gone"))
	assert.True(t, db.IsNotFound(err))

	next := st.Checkout()
	v, err = next.Get([]byte("k2"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)
	assert.Equal(t, 0, next.Stage().Len())
}
