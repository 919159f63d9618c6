package query

import (
	"context"

	"github.com/pharmacore/pharmacy-api/internal/user/domain"
)

// ListUsersQuery represents the query to list users
type ListUsersQuery struct {
	Role   string
	Limit  int
	Offset int
}

// ListUsersHandler handles list users query
type ListUsersHandler struct {
	repo domain.UserRepository
}

// NewListUsersHandler creates a new list users handler
func NewListUsersHandler(repo domain.UserRepository) *ListUsersHandler {
	return &ListUsersHandler{repo: repo}
}

// Handle executes the list users query
func (h *ListUsersHandler) Handle(ctx context.Context, q ListUsersQuery) ([]domain.User, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Role != "" {
		return h.repo.FindByRole(ctx, q.Role, q.Limit, q.Offset)
	}
	return h.repo.FindAll(ctx, q.Limit, q.Offset)
}
