// Package mockcomm provides an in-process communicator for testing and
// examples.
//
// A Group stands in for an MPI communicator: each rank gets a Comm, and
// ranks exchange float64 messages over channels with per-pair ordering.
// Comm implements parallel.Comm, so distributed vectors can be exercised
// without an MPI installation.
//
// # Usage
//
//	g := mockcomm.New(3)
//	err := g.Run(ctx, func(ctx context.Context, c *mockcomm.Comm) error {
//	    v, err := parallel.Wrap(ctx, local[c.Rank()], 12, c)
//	    if err != nil {
//	        return err
//	    }
//	    norm, err := v.MaxNorm(ctx)
//	    ...
//	})
//
// Every collective must be called by all ranks; Run cancels the remaining
// ranks as soon as one returns an error. Always pass a context with a
// timeout in tests so that a missing rank cannot hang the test.
package mockcomm
