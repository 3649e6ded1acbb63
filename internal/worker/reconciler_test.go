package worker_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/workspaces/internal/queue"
	"basegraph.app/workspaces/internal/worker"
)

var _ = Describe("OrphanReconciler", func() {
	var (
		orgs *mockOrganizationClient
		r    *worker.OrphanReconciler
		msg  queue.Message
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		orgs = &mockOrganizationClient{}
		r = worker.NewOrphanReconciler(orgs)
		msg = queue.Message{
			ID: "1-0",
			OrphanMessage: queue.OrphanMessage{
				OrgCode:   "org_orphan",
				CreatedBy: "user_1",
				Reason:    queue.ReasonOwnerAssignmentFailed,
				Attempt:   1,
			},
		}
	})

	It("deletes an organization without members", func() {
		Expect(r.Process(ctx, msg)).To(Succeed())
		Expect(orgs.deleted).To(Equal([]string{"org_orphan"}))
	})

	It("keeps an organization that gained a member", func() {
		orgs.countFn = func(context.Context, string) (int, error) { return 1, nil }

		Expect(r.Process(ctx, msg)).To(Succeed())
		Expect(orgs.deleted).To(BeEmpty())
	})

	It("does not delete when membership cannot be read", func() {
		orgs.countFn = func(context.Context, string) (int, error) { return 0, errors.New("timeout") }

		Expect(r.Process(ctx, msg)).NotTo(Succeed())
		Expect(orgs.deleted).To(BeEmpty())
	})

	It("returns delete failures for retry", func() {
		orgs.deleteFn = func(context.Context, string) error { return errors.New("503") }

		Expect(r.Process(ctx, msg)).NotTo(Succeed())
	})
})
