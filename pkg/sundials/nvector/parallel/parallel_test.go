package parallel_test

import (
	"context"
	"math"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sunml/sundials-go/pkg/sundials/mockcomm"
	"github.com/sunml/sundials-go/pkg/sundials/nvector"
	"github.com/sunml/sundials-go/pkg/sundials/nvector/parallel"
)

var _ = Describe("Vector", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		group  *mockcomm.Group
	)

	BeforeEach(func() {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		group = mockcomm.New(3)
	})

	AfterEach(func() {
		cancel()
	})

	// locals gives rank r the values r*10+1 .. r*10+len.
	locals := func(lens ...int) [][]float64 {
		out := make([][]float64, len(lens))
		for r, n := range lens {
			out[r] = make([]float64, n)
			for i := range out[r] {
				out[r][i] = float64(r*10 + i + 1)
			}
		}
		return out
	}

	Describe("Wrap", func() {
		It("accepts local lengths that sum to the global length", func() {
			data := locals(2, 3, 1)
			err := group.Run(ctx, func(ctx context.Context, c *mockcomm.Comm) error {
				defer GinkgoRecover()
				v, err := parallel.Wrap(ctx, data[c.Rank()], 6, c)
				if err != nil {
					return err
				}
				Expect(v.GlobalLen()).To(Equal(int64(6)))
				Expect(v.Local().Len()).To(Equal(len(data[c.Rank()])))
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("does not copy the local payload", func() {
			data := locals(1, 1, 1)
			err := group.Run(ctx, func(ctx context.Context, c *mockcomm.Comm) error {
				defer GinkgoRecover()
				v, err := parallel.Wrap(ctx, data[c.Rank()], 3, c)
				if err != nil {
					return err
				}
				v.Data()[0] = -1
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([][]float64{{-1}, {-1}, {-1}}))
		})

		It("fails on every rank when the sum differs", func() {
			data := locals(2, 2, 2)
			var mu sync.Mutex
			var errs []error
			_ = group.Run(ctx, func(ctx context.Context, c *mockcomm.Comm) error {
				defer GinkgoRecover()
				_, err := parallel.Wrap(ctx, data[c.Rank()], 7, c)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			})
			Expect(errs).To(HaveLen(3))
			for _, err := range errs {
				Expect(err).To(MatchError(parallel.ErrIncorrectGlobalSize))
			}
		})

		It("rejects a nil communicator", func() {
			_, err := parallel.Wrap(ctx, []float64{1}, 1, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("collective operations", func() {
		It("computes global reductions", func() {
			data := locals(2, 3, 1)
			// Elements: 1 2 | 11 12 13 | 21
			err := group.Run(ctx, func(ctx context.Context, c *mockcomm.Comm) error {
				defer GinkgoRecover()
				v, err := parallel.Wrap(ctx, data[c.Rank()], 6, c)
				if err != nil {
					return err
				}
				sum, err := v.Sum(ctx)
				if err != nil {
					return err
				}
				Expect(sum).To(Equal(60.0))

				norm, err := v.MaxNorm(ctx)
				if err != nil {
					return err
				}
				Expect(norm).To(Equal(21.0))

				dot, err := v.Dot(ctx, v)
				if err != nil {
					return err
				}
				Expect(dot).To(Equal(1.0 + 4 + 121 + 144 + 169 + 441))

				ones := make([]float64, len(data[c.Rank()]))
				for i := range ones {
					ones[i] = 1
				}
				w, err := parallel.Wrap(ctx, ones, 6, c)
				if err != nil {
					return err
				}
				wrms, err := v.WRMSNorm(ctx, w)
				if err != nil {
					return err
				}
				Expect(wrms).To(BeNumerically("~", math.Sqrt(880.0/6), 1e-12))
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("gives an empty vector a zero norm", func() {
			err := group.Run(ctx, func(ctx context.Context, c *mockcomm.Comm) error {
				defer GinkgoRecover()
				v, err := parallel.Wrap(ctx, nil, 0, c)
				if err != nil {
					return err
				}
				wrms, err := v.WRMSNorm(ctx, v)
				Expect(err).NotTo(HaveOccurred())
				Expect(wrms).To(BeZero())
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects vectors from another communicator or global length", func() {
			a, b := mockcomm.New(1), mockcomm.New(1)
			v, err := parallel.Wrap(ctx, []float64{3}, 1, a.Comm(0))
			Expect(err).NotTo(HaveOccurred())
			other, err := parallel.Wrap(ctx, []float64{1}, 1, b.Comm(0))
			Expect(err).NotTo(HaveOccurred())
			longer, err := parallel.Wrap(ctx, []float64{1, 1}, 2, a.Comm(0))
			Expect(err).NotTo(HaveOccurred())

			_, err = v.WRMSNorm(ctx, other)
			Expect(err).To(MatchError(nvector.ErrIncompatibleLength))
			_, err = v.WRMSNorm(ctx, longer)
			Expect(err).To(MatchError(nvector.ErrIncompatibleLength))
			_, err = v.Dot(ctx, other)
			Expect(err).To(MatchError(nvector.ErrIncompatibleLength))
			_, err = v.WRMSNorm(ctx, nil)
			Expect(err).To(MatchError(nvector.ErrIncompatibleLength))
		})
	})
})
