package comments

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaThHu/Notizen-App/internal/domain"
)

// Comment as returned to clients, with the author joined in.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Text      string             `bson:"text" json:"text"`
	Author    domain.Author      `bson:"author" json:"author"`
	NoteID    primitive.ObjectID `bson:"note" json:"noteId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CreateCommentRequest struct {
	NoteID string `json:"noteId"`
	Text   string `json:"text"`
}
