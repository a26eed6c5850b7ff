package budget

import (
	"fmt"

	"github.com/cdfund/backend/internal/models"
)

var (
	ErrCategoryInvalid   = fmt.Errorf("%w: unknown budget category", models.ErrValidation)
	ErrDatesInvalid      = fmt.Errorf("%w: the effective date must be before the expiry date", models.ErrValidation)
	ErrAmountNotPositive = fmt.Errorf("%w: the amount must be positive", models.ErrValidation)

	ErrProjectAllocationExists = fmt.Errorf("%w: an active budget allocation already exists for this project and fiscal year", models.ErrConflict)

	ErrOnlyDraftSubmit      = fmt.Errorf("%w: only draft budgets can be submitted", models.ErrInvalidState)
	ErrOnlySubmittedApprove = fmt.Errorf("%w: only submitted budgets can be approved", models.ErrInvalidState)
	ErrOnlyApprovedAllocate = fmt.Errorf("%w: only approved budgets can be allocated", models.ErrInvalidState)
	ErrOnlyAllocatedCommit  = fmt.Errorf("%w: can only commit from allocated budgets", models.ErrInvalidState)
	ErrOnlyAllocatedUtilize = fmt.Errorf("%w: can only utilize from allocated budgets", models.ErrInvalidState)
	ErrNotEditable          = fmt.Errorf("%w: cannot update allocated or exhausted budgets", models.ErrInvalidState)

	ErrReleaseExceedsCommitment = fmt.Errorf("%w: cannot release more than the committed amount", models.ErrInvalidOperation)
	ErrUtilizeExceedsFunds      = fmt.Errorf("%w: cannot utilize more than the committed and available amounts", models.ErrInvalidOperation)
)
