package loader

import (
	"updoot/internal/models"
	"updoot/internal/repositories"
)

// UpdootLoader batches own-vote lookups into one
// WHERE (post_id, user_id) IN (...) query. The loaded value is the vote's
// signed value; a key the user never voted on resolves as absent.
type UpdootLoader = Loader[models.UpdootKey, int]

func NewUpdootLoader(updoots repositories.UpdootRepository, opts ...Option) *UpdootLoader {
	return New(func(keys []models.UpdootKey) (map[models.UpdootKey]int, error) {
		rows, err := updoots.GetMany(keys)
		if err != nil {
			return nil, err
		}
		byKey := make(map[models.UpdootKey]int, len(rows))
		for _, u := range rows {
			byKey[models.UpdootKey{PostID: u.PostID, UserID: u.UserID}] = u.Value
		}
		return byKey, nil
	}, opts...)
}
