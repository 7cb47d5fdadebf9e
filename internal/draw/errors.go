package draw

import (
	"fmt"

	"github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
)

// InsufficientPoolError is returned when fewer eligible, unexcluded
// organizations remain than were requested. The session is left unchanged.
type InsufficientPoolError struct {
	Category  domain.ServiceCategory
	District  string
	Requested int
	Available int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("insufficient pool for %s in %s: requested %d, available %d",
		e.Category, e.District, e.Requested, e.Available)
}

// Unwrap exposes the coded error so dErrors.HasCode matches CodeInsufficientPool.
func (e *InsufficientPoolError) Unwrap() error {
	return dErrors.New(dErrors.CodeInsufficientPool, e.Error())
}
