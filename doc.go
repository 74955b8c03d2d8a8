/*
Package ledger defines the interfaces and the primitives shared by all ledger
extensions: addresses and conditions, storage, context helpers for logging and
event notification, and the genesis initialization contract.

Extensions live under the x/ directory. Each of them operates on a KVStore
passed with every call. Atomicity of a single operation is achieved by
executing it on a cache wrap of the store, which is written to the parent
store only when the whole operation succeeded.
*/
package ledger
