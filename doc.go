package nestkv

/*
nestkv is a small in-memory key/value store with nested transactions. Transactions
stack: a BEGIN inside an open transaction pushes a new frame, and when both an
outer and an inner transaction change the same key, committing both keeps the
inner transaction's value.

Building nestkv produces one executable, nestkv-cli, which speaks a line-oriented
protocol (SET, GET, UNSET, FIND, COUNTS, BEGIN, ROLLBACK, COMMIT, END) over
standard input.

The `nestkv` module is organized into the following packages:

* `kv/store`: the transaction stack and the resolve/commit/rollback algorithms.
* `kv/shell`: the textual command dispatcher on top of the store.
* `kv/config`: client configuration, loaded from a TOML file.
* `kv/nestkv-cli`: the command line client.

The store keeps everything in memory and serves a single caller; there is no
persistence, no network interface and no internal locking.
*/
