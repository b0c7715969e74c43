/*
Package lazyseq provides exactly-once lazy initialization of a shared
sequence generator, together with the pieces that idea decomposes into:
monotonic counters, generic lazy holders, a rendezvous barrier, and a
race-amplifying stress harness that verifies the whole arrangement
under contention.

# Overview

The shared generator is the classic lazy singleton: constructed on
first use, published so that no caller can ever observe it half-built,
and cheap to access once it exists. Three strategies deliver that
contract, in order of preference:

 1. The holder idiom: sync.OnceValue at package level (this package's
    Instance). Construction is fully sequenced before publication by
    the Go memory model.
 2. A mutex-guarded accessor (lazy.Synchronized): every caller passes
    through one lock, trading a small per-call cost for simplicity.
 3. Double-checked locking with an atomic flag (lazy.Lazy): lock-free
    steady state, with the publishing store ordered after construction.

Double-checked locking with a plain, unsynchronized outer read is NOT a
fourth strategy. It is a data race that can expose a partially
initialized generator, and it lives in lazy/broken only so the stress
suite can demonstrate the hazard.

# Basic Usage

Fetch the process-wide generator and draw values:

	gen := lazyseq.Instance()
	v, err := gen.Next()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(v) // 1 on the first call, ever, process-wide

Or own the lifecycle explicitly with a holder:

	holder := lazyseq.NewHolder(1)
	gen, err := holder.Get()

# Verifying under contention

The stress package releases N goroutines through a barrier in the same
instant and checks that they drew N distinct values from one shared
instance:

	runner := stress.NewRunner("lazy", source)
	report, err := runner.Run(ctx)
*/
package lazyseq
