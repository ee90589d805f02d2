package loader

import (
	"updoot/internal/models"
	"updoot/internal/repositories"
)

// UserLoader batches user-by-id lookups into one WHERE id IN (...) query.
type UserLoader = Loader[uint, models.User]

func NewUserLoader(users repositories.UserRepository, opts ...Option) *UserLoader {
	return New(func(ids []uint) (map[uint]models.User, error) {
		rows, err := users.GetMany(ids)
		if err != nil {
			return nil, err
		}
		byID := make(map[uint]models.User, len(rows))
		for _, u := range rows {
			byID[u.ID] = u
		}
		return byID, nil
	}, opts...)
}
