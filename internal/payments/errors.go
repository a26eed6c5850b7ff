package payments

import (
	"fmt"

	"github.com/cdfund/backend/internal/models"
)

var (
	ErrAmountTooSmall       = fmt.Errorf("%w: the payment amount must be at least 1", models.ErrValidation)
	ErrRetentionOutOfRange  = fmt.Errorf("%w: the retention percentage must be between 0 and 100", models.ErrValidation)
	ErrPaymentTypeInvalid   = fmt.Errorf("%w: unknown payment type", models.ErrValidation)
	ErrPaymentMethodInvalid = fmt.Errorf("%w: unknown payment method", models.ErrValidation)
	ErrDocumentsRequired    = fmt.Errorf("%w: supporting documents are required for submission", models.ErrValidation)

	ErrOnlyDraftSubmit   = fmt.Errorf("%w: only draft payments can be submitted", models.ErrInvalidState)
	ErrNotPanelAPending  = fmt.Errorf("%w: payment not pending Panel A approval", models.ErrInvalidState)
	ErrNotPanelBPending  = fmt.Errorf("%w: payment not pending Panel B approval", models.ErrInvalidState)
	ErrNotPaymentPending = fmt.Errorf("%w: payment not ready for execution", models.ErrInvalidState)

	// The panel ordering and dual-approval guards are checked from the
	// approval flags, independent of the stored status.
	ErrPanelARequired   = fmt.Errorf("%w: Panel A approval required before Panel B approval", models.ErrInvalidState)
	ErrNotFullyApproved = fmt.Errorf("%w: Both Panel A and Panel B approvals required for payment execution", models.ErrInvalidState)

	ErrPaidNotCancellable = fmt.Errorf("%w: cannot cancel paid vouchers", models.ErrInvalidState)
)
