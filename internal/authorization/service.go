package authorization

import (
	"context"

	authdomain "github.com/smallbiznis/zoonova/internal/auth/domain"
)

// Service answers whether an authenticated admin may act on an object.
type Service interface {
	Authorize(ctx context.Context, identity authdomain.Identity, object string, action string) error
}
