package worker

import (
	"context"
	"fmt"
	"log/slog"

	"basegraph.app/workspaces/internal/identity"
	"basegraph.app/workspaces/internal/queue"
)

// OrphanReconciler deletes organizations that a failed provisioning run left
// without members. Membership is re-read from the provider before deleting.
type OrphanReconciler struct {
	orgs identity.OrganizationClient
}

func NewOrphanReconciler(orgs identity.OrganizationClient) *OrphanReconciler {
	return &OrphanReconciler{orgs: orgs}
}

func (r *OrphanReconciler) Process(ctx context.Context, msg queue.Message) error {
	members, err := r.orgs.CountOrganizationMembers(ctx, msg.OrgCode)
	if err != nil {
		return fmt.Errorf("counting members: %w", err)
	}

	if members > 0 {
		slog.InfoContext(ctx, "organization has members, keeping it",
			"members", members,
			"created_by", msg.CreatedBy)
		return nil
	}

	if err := r.orgs.DeleteOrganization(ctx, msg.OrgCode); err != nil {
		return err
	}

	slog.InfoContext(ctx, "deleted orphaned organization",
		"created_by", msg.CreatedBy,
		"reason", msg.Reason)
	return nil
}
