package comments

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JaThHu/Notizen-App/internal/database"
)

// Store is the comment persistence surface, consumed by the handler here and
// by the notes handler for listing and cascade deletion.
type Store interface {
	Insert(ctx context.Context, noteID, authorID primitive.ObjectID, text string) (Comment, error)
	FindOwner(ctx context.Context, id primitive.ObjectID) (primitive.ObjectID, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByNote(ctx context.Context, noteID primitive.ObjectID) ([]Comment, error)
	DeleteByNote(ctx context.Context, noteID primitive.ObjectID) (int64, error)
}

// NoteChecker answers whether a note exists; implemented by the notes
// repository.
type NoteChecker interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type Repository struct {
	comments *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{comments: db.Collection(database.CommentsCollection)}
}

// authorLookup joins the author display fields onto each comment, the
// aggregation equivalent of a populate. The password never crosses the join.
func authorLookup() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.UsersCollection},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: "$author"}},
		{{Key: "$project", Value: bson.D{{Key: "author.password", Value: 0}}}},
	}
}

func (r *Repository) Insert(ctx context.Context, noteID, authorID primitive.ObjectID, text string) (Comment, error) {
	now := time.Now().UTC()
	doc := bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "text", Value: text},
		{Key: "author", Value: authorID},
		{Key: "note", Value: noteID},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
	res, err := r.comments.InsertOne(ctx, doc)
	if err != nil {
		return Comment{}, err
	}
	return r.findByID(ctx, res.InsertedID.(primitive.ObjectID))
}

func (r *Repository) findByID(ctx context.Context, id primitive.ObjectID) (Comment, error) {
	pipeline := append(mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": id}}},
	}, authorLookup()...)

	cur, err := r.comments.Aggregate(ctx, pipeline)
	if err != nil {
		return Comment{}, err
	}
	var out []Comment
	if err := cur.All(ctx, &out); err != nil {
		return Comment{}, err
	}
	if len(out) == 0 {
		return Comment{}, mongo.ErrNoDocuments
	}
	return out[0], nil
}

func (r *Repository) FindOwner(ctx context.Context, id primitive.ObjectID) (primitive.ObjectID, error) {
	var ref struct {
		Author primitive.ObjectID `bson:"author"`
	}
	opts := options.FindOne().SetProjection(bson.M{"author": 1})
	if err := r.comments.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&ref); err != nil {
		return primitive.NilObjectID, err
	}
	return ref.Author, nil
}

func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByNote returns a note's comments, newest first.
func (r *Repository) ListByNote(ctx context.Context, noteID primitive.ObjectID) ([]Comment, error) {
	pipeline := append(mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"note": noteID}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}, authorLookup()...)

	cur, err := r.comments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	out := make([]Comment, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByNote removes every comment referencing the note; used by the
// cascade when the note itself is deleted.
func (r *Repository) DeleteByNote(ctx context.Context, noteID primitive.ObjectID) (int64, error) {
	res, err := r.comments.DeleteMany(ctx, bson.M{"note": noteID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
