package shared

import "context"

type companyContextKey struct{}

// ContextWithCompany stores the authenticated company id in context.
// The id is resolved by the (external) auth layer before requests reach
// the ledger core.
func ContextWithCompany(ctx context.Context, companyID int64) context.Context {
	return context.WithValue(ctx, companyContextKey{}, companyID)
}

// CompanyFromContext extracts the company id from context. Zero means the
// request was not scoped to a company.
func CompanyFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(companyContextKey{}).(int64)
	return id
}
