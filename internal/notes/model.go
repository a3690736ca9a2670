package notes

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaThHu/Notizen-App/internal/domain"
)

// Note as returned to clients, with the author joined in. Likes holds the
// ids of users who currently like the note, each at most once.
type Note struct {
	ID        primitive.ObjectID   `bson:"_id" json:"id"`
	Title     string               `bson:"title" json:"title"`
	Content   string               `bson:"content" json:"content"`
	Author    domain.Author        `bson:"author" json:"author"`
	Completed bool                 `bson:"completed" json:"completed"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type CreateNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateNoteRequest distinguishes omitted fields from zero values: a nil
// pointer means the field was not in the request.
type UpdateNoteRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Completed *bool   `json:"completed"`
}

// Ref is the minimal projection loaded for guard checks before a mutation.
type Ref struct {
	Author primitive.ObjectID   `bson:"author"`
	Likes  []primitive.ObjectID `bson:"likes"`
}

// Liked reports whether the user is in the like set.
func (r Ref) Liked(userID primitive.ObjectID) bool {
	for _, id := range r.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
