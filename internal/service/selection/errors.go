package selection

import "github.com/kirinyoku/cinebook/internal/flow"

// ErrFlowNotFound is returned for unknown flows and flows of other users.
var ErrFlowNotFound = flow.ErrFlowNotFound
