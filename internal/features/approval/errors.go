package approval

import "errors"

var (
	// ErrNotFound - referenced workflow, payable or settings does not exist
	ErrNotFound = errors.New("approval workflow not found")

	// ErrUnauthorized - acting user is not the approver named at the current step
	ErrUnauthorized = errors.New("acting user is not the current step approver")

	// ErrInvalidState - decision attempted on a workflow that is not pending,
	// or the workflow moved underneath the caller before the write committed
	ErrInvalidState = errors.New("workflow is not in a state that accepts this decision")

	// ErrConfiguration - the organization has zero eligible approvers,
	// dedicated or fallback, for a tier that requires at least one
	ErrConfiguration = errors.New("organization has no eligible approvers configured")

	// ErrAlreadyRouted - a workflow for this payable already exists; raised by
	// the unique payable_id index when two submissions race
	ErrAlreadyRouted = errors.New("payable already has an approval workflow")
)
