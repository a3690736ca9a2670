package notes

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JaThHu/Notizen-App/internal/database"
)

// Store is the note persistence surface the handler consumes.
type Store interface {
	Insert(ctx context.Context, authorID primitive.ObjectID, title, content string) (Note, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (Note, error)
	List(ctx context.Context) ([]Note, error)
	FindRef(ctx context.Context, id primitive.ObjectID) (Ref, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, patch UpdateNoteRequest) (Note, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, noteID, userID primitive.ObjectID) (Note, error)
	RemoveLike(ctx context.Context, noteID, userID primitive.ObjectID) (Note, error)
}

type Repository struct {
	notes *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{notes: db.Collection(database.NotesCollection)}
}

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

func (r *Repository) Insert(ctx context.Context, authorID primitive.ObjectID, title, content string) (Note, error) {
	now := time.Now().UTC()
	doc := bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "title", Value: title},
		{Key: "content", Value: content},
		{Key: "author", Value: authorID},
		{Key: "completed", Value: false},
		{Key: "likes", Value: bson.A{}},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
	res, err := r.notes.InsertOne(ctx, doc)
	if err != nil {
		return Note{}, err
	}
	return r.FindByID(ctx, res.InsertedID.(primitive.ObjectID))
}

func (r *Repository) FindByID(ctx context.Context, id primitive.ObjectID) (Note, error) {
	pipeline := append(mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": id}}},
	}, authorLookup()...)

	cur, err := r.notes.Aggregate(ctx, pipeline)
	if err != nil {
		return Note{}, err
	}
	var out []Note
	if err := cur.All(ctx, &out); err != nil {
		return Note{}, err
	}
	if len(out) == 0 {
		return Note{}, mongo.ErrNoDocuments
	}
	return normalize(out[0]), nil
}

// List returns all notes, newest first, authors joined.
func (r *Repository) List(ctx context.Context) ([]Note, error) {
	pipeline := append(mongo.Pipeline{
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}, authorLookup()...)

	cur, err := r.notes.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	out := make([]Note, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = normalize(out[i])
	}
	return out, nil
}

func (r *Repository) FindRef(ctx context.Context, id primitive.ObjectID) (Ref, error) {
	var ref Ref
	opts := options.FindOne().SetProjection(bson.M{"author": 1, "likes": 1})
	if err := r.notes.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&ref); err != nil {
		return Ref{}, err
	}
	return ref, nil
}

func (r *Repository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.notes.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update applies only the fields present in the patch and bumps updatedAt.
func (r *Repository) Update(ctx context.Context, id primitive.ObjectID, patch UpdateNoteRequest) (Note, error) {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	update := bson.M{"$currentDate": bson.M{"updatedAt": true}}
	if len(set) > 0 {
		update["$set"] = set
	}

	res, err := r.notes.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return Note{}, err
	}
	if res.MatchedCount == 0 {
		return Note{}, mongo.ErrNoDocuments
	}
	return r.FindByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.notes.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddLike and RemoveLike flip like-set membership as single server-side set
// operations, so concurrent toggles by different users cannot lose updates.

func (r *Repository) AddLike(ctx context.Context, noteID, userID primitive.ObjectID) (Note, error) {
	return r.applyLike(ctx, noteID, bson.M{"$addToSet": bson.M{"likes": userID}})
}

func (r *Repository) RemoveLike(ctx context.Context, noteID, userID primitive.ObjectID) (Note, error) {
	return r.applyLike(ctx, noteID, bson.M{"$pull": bson.M{"likes": userID}})
}

func (r *Repository) applyLike(ctx context.Context, noteID primitive.ObjectID, update bson.M) (Note, error) {
	res, err := r.notes.UpdateOne(ctx, bson.M{"_id": noteID}, update)
	if err != nil {
		return Note{}, err
	}
	if res.MatchedCount == 0 {
		return Note{}, mongo.ErrNoDocuments
	}
	return r.FindByID(ctx, noteID)
}

// normalize keeps the like set JSON-friendly: never null, always an array.
func normalize(n Note) Note {
	if n.Likes == nil {
		n.Likes = []primitive.ObjectID{}
	}
	return n
}
