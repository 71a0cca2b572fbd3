package constant

import (
	"context"
)

type contextKey string

const (
	operatorContextKey contextKey = "operator"
)

// SetOperator stores the authenticated operator in ctx
func SetOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorContextKey, operator)
}

// GetOperator returns the operator stored by SetOperator
func GetOperator(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(operatorContextKey).(string)
	return operator, ok && operator != ""
}
