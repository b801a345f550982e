// Package spool moves print requests from print clients to printers through
// a shared, capacity-bounded FIFO.
//
// A Channel is created once, before any actor starts, and shared by
// reference. Producers (print clients) Put requests and pace themselves;
// consumers (printers) Take requests forever and simulate printing time
// proportional to the request size. A Coordinator spawns both pools, waits
// for the clients, drains the queue and joins the printers.
//
// Three Channel realizations share one contract:
//
//   - NewMemoryChannel: ring buffer guarded by a mutex and two conditions.
//   - NewChanChannel: buffered Go channel.
//   - NewKernelChannel: POSIX message queue; requests cross the kernel as
//     Codec frames.
//
// Put blocks while the channel is full and Take blocks while it is empty.
// Those waits are never reported as errors. A context with a deadline or a
// cancel func bounds the wait.
package spool
