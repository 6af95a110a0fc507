package store

import (
	"github.com/google/btree"
)

// baseItem is one key/value pair in the base layer.
type baseItem struct {
	key   string
	value string
}

func (i baseItem) Less(than btree.Item) bool {
	return i.key < than.(baseItem).key
}

// baseLayer is frame 0 of the transaction stack: the only durable state,
// holding raw values. It is ordered so Find can walk it without building an
// extra index.
type baseLayer struct {
	tree *btree.BTree
}

func newBaseLayer(degree int) baseLayer {
	return baseLayer{tree: btree.New(degree)}
}

func (b baseLayer) get(key string) (string, bool) {
	item := b.tree.Get(baseItem{key: key})
	if item == nil {
		return "", false
	}
	return item.(baseItem).value, true
}

func (b baseLayer) set(key, value string) {
	b.tree.ReplaceOrInsert(baseItem{key: key, value: value})
}

// delete removes key from the base layer. Deleting an absent key is a no-op.
func (b baseLayer) delete(key string) {
	b.tree.Delete(baseItem{key: key})
}

// ascend visits every key/value pair in key order until fn returns false.
func (b baseLayer) ascend(fn func(key, value string) bool) {
	b.tree.Ascend(func(item btree.Item) bool {
		kv := item.(baseItem)
		return fn(kv.key, kv.value)
	})
}

func (b baseLayer) len() int {
	return b.tree.Len()
}
