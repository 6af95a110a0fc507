// Package shell implements the line-oriented command protocol on top of the
// transaction store: SET, GET, UNSET, FIND, COUNTS, BEGIN, ROLLBACK, COMMIT
// and END. The textual sentinel NULL for absent keys belongs to this layer;
// the store itself reports absence with an ok-bool.
package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nestkv/nestkv/kv/store"
)

// Null is printed for a key that resolves as absent. It is reserved by the
// protocol and must not be stored as a legitimate value.
const Null = "NULL"

// Dispatcher parses protocol lines and applies them to a store.
type Dispatcher struct {
	store *store.Store
}

func NewDispatcher(s *store.Store) *Dispatcher {
	return &Dispatcher{store: s}
}

// Store returns the underlying store.
func (d *Dispatcher) Store() *store.Store {
	return d.store
}

// Exec runs a single protocol line. The reply is empty for commands that
// produce no output; done is true once END is seen. Blank lines are ignored.
func (d *Dispatcher) Exec(line string) (reply string, done bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "END":
		return "", true

	case "SET":
		if len(args) != 2 {
			return "usage: SET key value", false
		}
		d.store.Set(args[0], args[1])
		return "", false

	case "GET":
		if len(args) != 1 {
			return "usage: GET key", false
		}
		value, ok := d.store.Get(args[0])
		if !ok {
			return Null, false
		}
		return value, false

	case "UNSET":
		if len(args) != 1 {
			return "usage: UNSET key", false
		}
		d.store.Unset(args[0])
		return "", false

	case "FIND":
		if len(args) != 1 {
			return "usage: FIND value", false
		}
		return strings.Join(d.store.Find(args[0]), " "), false

	case "COUNTS":
		if len(args) != 1 {
			return "usage: COUNTS value", false
		}
		return strconv.Itoa(d.store.Counts(args[0])), false

	case "BEGIN":
		d.store.Begin()
		return "", false

	case "ROLLBACK":
		d.store.Rollback()
		return "", false

	case "COMMIT":
		if err := d.store.Commit(); err != nil {
			return err.Error(), false
		}
		return "", false
	}
	return fmt.Sprintf("unknown command %q", cmd), false
}
